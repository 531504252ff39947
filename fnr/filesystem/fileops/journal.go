package fileops

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/interfaces"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/types"
)

var journalHeader = []string{"batch_id", "old_path", "new_path", "status", "reason"}

// JournalRecord is one line of an undo journal
type JournalRecord struct {
	BatchID string
	OldPath string
	NewPath string
	Status  types.RenameStatus
	Reason  string
}

// CSVJournal appends rename results to a CSV file. Paths are written as
// raw bytes so the original names can be restored exactly.
type CSVJournal struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// OpenJournal opens path for appending, writing the header to a new file
func OpenJournal(path string) (*CSVJournal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat journal %s: %w", path, err)
	}

	j := &CSVJournal{f: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := j.write(journalHeader); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return j, nil
}

// Record appends one result
func (j *CSVJournal) Record(batchID string, r types.RenameResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.write([]string{batchID, r.Src, r.Dst, string(r.Status), r.Reason})
}

func (j *CSVJournal) write(record []string) error {
	if err := j.w.Write(record); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}
	return nil
}

// Close flushes and closes the journal file
func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.w.Flush()
	return errors.Join(j.w.Error(), j.f.Close())
}

// ReadJournal returns the records of the journal at path in file order
func ReadJournal(path string) ([]JournalRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(journalHeader)

	var records []JournalRecord
	for line := 0; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, fmt.Errorf("failed to read journal %s: %w", path, err)
		}
		if line == 0 && row[0] == journalHeader[0] {
			continue
		}
		records = append(records, JournalRecord{
			BatchID: row[0],
			OldPath: row[1],
			NewPath: row[2],
			Status:  types.RenameStatus(row[3]),
			Reason:  row[4],
		})
	}
	return records, nil
}

// Ensure CSVJournal implements the interface
var _ interfaces.Journal = (*CSVJournal)(nil)
