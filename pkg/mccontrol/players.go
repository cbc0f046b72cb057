package mccontrol

import (
	"regexp"
	"strings"
)

// PlayerRecord 表示一名在线玩家
type PlayerRecord struct {
	Name string `json:"name"` // 玩家名称，可能包含颜色代码
	IsOp bool   `json:"isOp"` // 是否为管理员
	AFK  bool   `json:"afk"`  // 是否处于挂机状态
}

// trimCutset 与服务器文本中常见的空白字符一致（含NUL和垂直制表符）
const trimCutset = " \t\n\r\x00\x0b"

var (
	listSeparator  = regexp.MustCompile(`[\r\n,]+`)
	metadataPrefix = regexp.MustCompile(`^.*?:\s*`)
	afkMarker      = regexp.MustCompile(`(?i)\[AFK\]`)
	colorCode      = regexp.MustCompile(`§.`)
)

// splitNameSection 以第一个冒号为界取出名称部分，并按逗号、CR、LF拆分
func splitNameSection(text string) []string {
	_, section, found := strings.Cut(text, ":")
	if !found {
		return nil
	}

	var items []string
	for _, item := range listSeparator.Split(section, -1) {
		item = strings.Trim(item, trimCutset)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParsePlayerList 解析 list 命令的回应。
// 不依赖标题文字，只以第一个冒号分隔标题与名称部分；没有冒号时返回空列表。
// 名称中本身带冒号时会被截断，这是已知的限制。
func ParsePlayerList(text string) []PlayerRecord {
	players := []PlayerRecord{}
	for _, item := range splitNameSection(text) {
		// 部分服务器在名称前附加分组信息，如 "admins: Alice"
		if strings.Contains(item, ":") {
			item = metadataPrefix.ReplaceAllString(item, "")
		}

		afk := false
		if afkMarker.MatchString(item) {
			afk = true
			item = strings.Trim(afkMarker.ReplaceAllString(item, ""), trimCutset)
		}

		players = append(players, PlayerRecord{Name: item, AFK: afk})
	}
	return players
}

// ParseOpsList 解析管理员列表，保留原有顺序、大小写和重复项
func ParseOpsList(text string) []string {
	ops := splitNameSection(text)
	if ops == nil {
		return []string{}
	}
	return ops
}

// StripColorCodes 去掉所有 "§" 加一个字符形式的颜色代码
func StripColorCodes(text string) string {
	return colorCode.ReplaceAllString(text, "")
}

// ResolveOperators 结合玩家列表和管理员列表计算每名玩家的管理员标记，返回新的切片。
// 管理员列表为空时退而使用红色名称（§c）作为判断依据。
func ResolveOperators(players []PlayerRecord, ops []string) []PlayerRecord {
	resolved := make([]PlayerRecord, len(players))
	copy(resolved, players)

	if len(ops) == 0 {
		for i := range resolved {
			resolved[i].IsOp = strings.Contains(resolved[i].Name, "§c")
		}
		return resolved
	}

	for i := range resolved {
		plain := StripColorCodes(resolved[i].Name)
		for _, op := range ops {
			if strings.EqualFold(plain, strings.Trim(op, trimCutset)) {
				resolved[i].IsOp = true
				break
			}
		}
	}
	return resolved
}
