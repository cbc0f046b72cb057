package service

import (
	"fmt"

	"gorm.io/gorm"

	"city.newnan/rcon-console/internal/model"
	"city.newnan/rcon-console/pkg/mccontrol"
)

// EntryPublisher 接收新追加的控制台记录，用于实时推送
type EntryPublisher interface {
	PublishEntries(profileID string, entries []model.ConsoleEntry)
}

// transcriptStore 把控制台记录写入数据库，实现 mccontrol.TranscriptSink
type transcriptStore struct {
	db         *gorm.DB
	profileID  string
	publishers []EntryPublisher
}

func (s *transcriptStore) Append(entries ...mccontrol.TranscriptEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([]model.ConsoleEntry, len(entries))
	for i, e := range entries {
		rows[i] = model.ConsoleEntry{
			ProfileID: s.profileID,
			Direction: string(e.Direction),
			Text:      e.Text,
			CreatedAt: e.Time,
		}
	}
	if err := s.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("保存控制台记录失败: %w", err)
	}

	for _, p := range s.publishers {
		p.PublishEntries(s.profileID, rows)
	}
	return nil
}

// loadTranscript 按追加顺序读取连接的控制台记录
func loadTranscript(gormDB *gorm.DB, profileID string) ([]model.ConsoleEntry, error) {
	var entries []model.ConsoleEntry
	if err := gormDB.Where("profile_id = ?", profileID).Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
