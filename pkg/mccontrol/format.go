package mccontrol

import (
	"strings"
)

const ansiReset = "\033[0m"

// minecraftFormatCode Minecraft格式控制符到ANSI转义序列的映射
var minecraftFormatCode = map[rune]string{
	// 颜色代码
	'0': "\033[30m",   // 黑色
	'1': "\033[34;1m", // 深蓝色
	'2': "\033[32;1m", // 深绿色
	'3': "\033[36;1m", // 湖蓝色
	'4': "\033[31;1m", // 深红色
	'5': "\033[35;1m", // 紫色
	'6': "\033[33m",   // 金色
	'7': "\033[37m",   // 灰色
	'8': "\033[30;1m", // 深灰色
	'9': "\033[34m",   // 蓝色
	'a': "\033[32m",   // 绿色
	'b': "\033[36m",   // 天蓝色
	'c': "\033[31m",   // 红色
	'd': "\033[35m",   // 粉红色
	'e': "\033[33m",   // 黄色
	'f': "\033[37;1m", // 白色

	// 格式化代码
	'k': "\033[5m", // 随机字符 (闪烁)
	'l': "\033[1m", // 粗体
	'm': "\033[9m", // 删除线
	'n': "\033[4m", // 下划线
	'o': "\033[3m", // 斜体
	'r': ansiReset, // 重置
}

// ColorCodesToANSI 把文本中的Minecraft颜色代码转换为ANSI转义序列。
// 未知的代码会被丢弃；每行末尾和整段末尾都会重置颜色。
func ColorCodesToANSI(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '§' && i+1 < len(runes) {
			if code, ok := minecraftFormatCode[toLowerASCII(runes[i+1])]; ok {
				b.WriteString(code)
			}
			i++
			continue
		}
		if runes[i] == '\n' {
			b.WriteString(ansiReset)
		}
		b.WriteRune(runes[i])
	}

	if !strings.HasSuffix(b.String(), ansiReset) {
		b.WriteString(ansiReset)
	}
	return b.String()
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
