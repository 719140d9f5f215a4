package model

import (
	"path"
	"time"
)

// FileMeta describes one stored upload attached to a lead, in upload order.
type FileMeta struct {
	Path         string `json:"path"`
	OriginalName string `json:"originalname"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
}

// URL returns the public path the stored file is served under.
func (f FileMeta) URL() string {
	return "/uploads/" + path.Base(f.Path)
}

// Lead is a single funding-request submission. Once written a lead is never
// mutated or deleted; the store orders leads newest first.
type Lead struct {
	ID          int64      `json:"id"`
	ReceivedAt  time.Time  `json:"receivedAt"`
	Company     string     `json:"company"`
	ContactName string     `json:"contactName"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Amount      string     `json:"amount"`
	Sector      string     `json:"sector"`
	Message     string     `json:"message"`
	Files       []FileMeta `json:"files"`
}
