// ABOUTME: Snapshot loader producing normalized lead records
// ABOUTME: Parses the CSV as raw text, derives contact fields, and merges the readiness overlay
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/wolfcarports/salesdesk/models"
)

// ReadinessLookup supplies the stored readiness overlay. Injected so the
// loader is testable without a live store; wrap db.AllReadiness for
// production use.
type ReadinessLookup func() ([]models.ReadinessRecord, error)

// Loader resolves, parses, and derives the lead dataset. Safe for concurrent
// use; each Load returns a fresh slice of records.
type Loader struct {
	// Path is a snapshot file or a directory to scan.
	Path string
	// Overlay supplies stored readiness rows; nil disables the merge.
	Overlay ReadinessLookup

	cache *Cache

	mu           sync.Mutex
	lastResolved string
}

func NewLoader(path string, overlay ReadinessLookup) *Loader {
	return &Loader{Path: path, Overlay: overlay, cache: NewCache()}
}

// CurrentPath returns the last resolved snapshot path, for display.
func (l *Loader) CurrentPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastResolved
}

// Invalidate drops the parse cache; the next Load re-reads from disk.
func (l *Loader) Invalidate() {
	l.cache.Invalidate()
}

// Load resolves the newest snapshot, parses it (reusing the cached table
// when the file is unchanged), derives per-row fields, and merges the
// readiness overlay. Overlay failures degrade to snapshot-only values; a
// missing snapshot is fatal.
func (l *Loader) Load() ([]models.LeadRecord, error) {
	path, err := Resolve(l.Path)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.lastResolved = path
	l.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	raw := l.cache.Get(path, info.ModTime())
	if raw == nil {
		raw, err = parseSnapshot(path)
		if err != nil {
			return nil, err
		}
		l.cache.Put(path, info.ModTime(), raw)
	}

	records := make([]models.LeadRecord, 0, len(raw))
	for i, fields := range raw {
		records = append(records, derive(fields, i))
	}

	l.mergeOverlay(records)
	return records, nil
}

// parseSnapshot reads every cell as raw text. Short rows pad with empty
// strings so leading zeros and formatting survive untouched.
func parseSnapshot(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot row: %w", err)
		}
		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			} else {
				fields[col] = ""
			}
		}
		rows = append(rows, fields)
	}
	return rows, nil
}

// derive computes the per-row normalized fields. Pure over the raw cells;
// idx synthesizes an entity id when the snapshot has no EntityId column.
func derive(fields map[string]string, idx int) models.LeadRecord {
	rec := models.LeadRecord{Fields: fields}

	rec.EntityID = fields["EntityId"]
	if _, ok := fields["EntityId"]; !ok {
		rec.EntityID = strconv.Itoa(idx)
	}

	rec.DisplayName = displayName(fields)
	rec.PrimaryPhone, rec.AllPhones = CollectPhones(fields)
	rec.PrimaryEmail, rec.AllEmails = CollectEmails(fields)

	rec.City = firstNonEmpty(fields, "Leads_City", "Customers_City")
	rec.State = firstNonEmpty(fields, "Leads_State", "Customers_State")
	rec.Zip = firstNonEmpty(fields, "Leads_Zip_code", "Customers_Zip_code")
	rec.Owner = fields["Leads_Owner"]

	rec.ValueProxy = ParseMoney(firstNonEmpty(fields, "Last_quote_grandtotal", "Quotes_grand_total"))
	rec.LastCallAt = ParseDate(firstNonEmpty(fields, "Leads_LastCallDate", "Customers_LastCallDate"))
	rec.LastTextAt = ParseDate(firstNonEmpty(fields, "Leads_Text_LastTextDate", "Customers_Text_LastTextDate"))

	rec.ReadinessLevel = fields["Initial_Readiness_level"]
	return rec
}

func displayName(fields map[string]string) string {
	first := firstNonEmpty(fields, "Leads_First_Name", "Customers_First_Name")
	last := firstNonEmpty(fields, "Leads_Last_Name", "Customers_Last_Name")
	if name := strings.TrimSpace(first + " " + last); name != "" {
		return name
	}
	if name := firstNonEmpty(fields,
		"Customers_Customer_name", "Orders_Customer_name",
		"Leads_NormName", "Customers_NormName"); name != "" {
		return name
	}
	return "Unknown"
}

// mergeOverlay overwrites readiness fields with stored questionnaire results
// where present. Store failures are logged and the snapshot values stand.
func (l *Loader) mergeOverlay(records []models.LeadRecord) {
	if l.Overlay == nil {
		return
	}
	stored, err := l.Overlay()
	if err != nil {
		log.Printf("readiness overlay unavailable, using snapshot values: %v", err)
		return
	}
	if len(stored) == 0 {
		return
	}
	byEntity := make(map[string]models.ReadinessRecord, len(stored))
	for _, r := range stored {
		byEntity[r.EntityID] = r
	}
	for i := range records {
		if r, ok := byEntity[records[i].EntityID]; ok {
			records[i].ReadinessLevel = r.Level
			score := r.Score
			records[i].ReadinessScore = &score
		}
	}
}
