package domain

import (
	"log/slog"
	"regexp"
	"strings"
)

// Limits enforced during chunk reassembly, independent of host configuration.
const (
	// MaxChunkBytes caps the UTF-8 byte length of one reassembled chunk.
	MaxChunkBytes = 8 * 1024 * 1024
	// MaxChunkParts caps how many consecutive cells one chunk may span.
	MaxChunkParts = 1000
)

// Tag detection is purely textual and deliberately looser than the XML parse:
// case-insensitive, tolerant of a single namespace prefix and of surrounding
// non-XML noise in the cell.
var (
	openTagRE  = regexp.MustCompile(`(?i)<\s*(?:\w+:)?intercompanymessage\b`)
	closeTagRE = regexp.MustCompile(`(?i)</\s*(?:\w+:)?intercompanymessage\s*>`)
	messageRE  = regexp.MustCompile(`(?i)<\s*(?:\w+:)?intercompanymessage[\s\S]*?</\s*(?:\w+:)?intercompanymessage\s*>`)
	xmlDeclRE  = regexp.MustCompile(`(?i)\s*<\?xml[^>]*\?>`)
)

// MessageHandler consumes one reassembled message. A non-nil error is logged
// with row context and the scan moves on to the next message.
type MessageHandler func(msg string) error

// ScanStats summarizes one pass over a column.
type ScanStats struct {
	RowsScanned    int
	ChunksFound    int
	Messages       int
	SkippedChunks  int
	FailedMessages int
}

// Scanner locates intercompany message documents embedded in a column of raw
// cell text, reassembling documents that were split across consecutive rows.
// Every failure mode skips forward; a scan always completes the full column.
type Scanner struct {
	logger *slog.Logger
}

func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{logger: logger}
}

// Scan walks rows top to bottom and invokes handle once per extracted
// message, in document order. Row numbers in logs are 1-based to match the
// spreadsheet the column came from.
func (s *Scanner) Scan(rows []string, handle MessageHandler) ScanStats {
	stats := ScanStats{RowsScanned: len(rows)}
	n := len(rows)
	i := 0
	for i < n {
		cell := rows[i]
		hasOpen := openTagRE.MatchString(cell)
		if !hasOpen && !strings.Contains(cell, "<?xml") {
			i++
			continue
		}

		if hasOpen && closeTagRE.MatchString(cell) {
			// The whole document sits in a single cell.
			stats.ChunksFound++
			if len(cell) > MaxChunkBytes {
				s.logger.Warn("single-cell chunk exceeds size limit, skipping", "row", i+1, "bytes", len(cell))
				stats.SkippedChunks++
				i++
				continue
			}
			s.dispatch(cell, i, &stats, handle)
			i++
			continue
		}

		// The closing tag is on a later row: accumulate cells until it shows
		// up. An opening tag inside the accumulated region never restarts the
		// chunk; the first closing tag ends it.
		parts := []string{cell}
		j := i + 1
		overflow := false
		for j < n && !closeTagRE.MatchString(rows[j]) {
			parts = append(parts, rows[j])
			if len(parts) > MaxChunkParts {
				overflow = true
				break
			}
			j++
		}
		stats.ChunksFound++
		if overflow {
			s.logger.Warn("chunk exceeds part limit, abandoning", "row", i+1, "parts", len(parts))
			stats.SkippedChunks++
			i++
			continue
		}
		if j >= n {
			s.logger.Warn("incomplete chunk, no closing tag before end of column", "row", i+1)
			stats.SkippedChunks++
			i++
			continue
		}
		parts = append(parts, rows[j])
		chunk := strings.Join(parts, "")
		if len(chunk) > MaxChunkBytes {
			s.logger.Warn("chunk exceeds size limit, skipping", "row", i+1, "bytes", len(chunk))
			stats.SkippedChunks++
			i = j + 1
			continue
		}
		s.dispatch(chunk, i, &stats, handle)
		i = j + 1
	}
	return stats
}

func (s *Scanner) dispatch(chunk string, row int, stats *ScanStats, handle MessageHandler) {
	msgs := ExtractMessages(chunk)
	if len(msgs) == 0 {
		s.logger.Warn("no message blocks in chunk, skipping", "row", row+1)
		stats.SkippedChunks++
		return
	}
	for _, msg := range msgs {
		if err := handle(msg); err != nil {
			s.logger.Warn("message extraction failed", "row", row+1, "error", err)
			stats.FailedMessages++
			continue
		}
		stats.Messages++
	}
}

// ExtractMessages pulls every complete message span out of a bounded chunk.
// Sibling messages concatenated in the same chunk come back as separate
// entries, in document order. XML declarations, byte-order marks and
// surrounding whitespace are removed.
func ExtractMessages(chunk string) []string {
	chunk = strings.ReplaceAll(chunk, "\ufeff", "")
	chunk = strings.TrimSpace(chunk)
	spans := messageRE.FindAllString(chunk, -1)
	msgs := make([]string, 0, len(spans))
	for _, span := range spans {
		span = xmlDeclRE.ReplaceAllString(span, "")
		msgs = append(msgs, strings.TrimSpace(span))
	}
	return msgs
}
