package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// Platform identifies the order-management export a batch of files comes from.
type Platform string

const (
	Shopee Platform = "shopee"
	TikTok Platform = "tiktok"
)

// Platforms lists the supported platforms in display order.
var Platforms = []Platform{Shopee, TikTok}

// ParsePlatform accepts a platform name in any case.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
	return p, nil
}

func (p Platform) Valid() bool {
	return p == Shopee || p == TikTok
}

// Upper is the label used in sheet names and output file names.
func (p Platform) Upper() string {
	return strings.ToUpper(string(p))
}

// Cell is nil (empty), a string, or a float64.
type Cell = any

type Row []Cell

// Empty reports whether the row carries no value at all.
func (r Row) Empty() bool {
	for _, c := range r {
		if c != nil {
			return false
		}
	}
	return true
}

type Sheet []Row

type FileReport struct {
	Index   int
	Layout  string
	Rows    int
	Skipped bool
}

type MergeResult struct {
	Data      []byte
	SheetName string
	Platform  Platform
	Rows      int
	Files     []FileReport
}

type HistoryType string

const (
	HistoryUpload   HistoryType = "upload"
	HistoryDownload HistoryType = "download"
)

type HistoryItem struct {
	ID        string      `json:"id"`
	Type      HistoryType `json:"type"`
	Filename  string      `json:"filename"`
	Timestamp time.Time   `json:"timestamp"`
	Platform  Platform    `json:"platform,omitempty"`
	Size      int64       `json:"size,omitempty"`
	Count     int         `json:"count,omitempty"`
}
