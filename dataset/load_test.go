package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfcarports/salesdesk/models"
)

const sampleCSV = `EntityId,Leads_First_Name,Leads_Last_Name,Customers_Customer_name,Leads_Cell,Customers_Cell,Leads_Email_1,Leads_City,Leads_State,Leads_Zip_code,Leads_Owner,Last_quote_grandtotal,Leads_LastCallDate,Initial_Readiness_level
A,Jane,Doe,,5551230001,5551230001; 5551230002,Jane@Example.com,Austin,TX,78701,Ivan Torres,$9800.50,2025-08-01,Level 1
B,,,Acme Barns,,,"",Tulsa,OK,74101,Wolf Carports,,not-a-date,
`

func writeSampleSnapshot(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "FinalDataForDashboard_20250814_120000.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))
	return path
}

func TestLoadDerivesFields(t *testing.T) {
	dir := t.TempDir()
	writeSampleSnapshot(t, dir)

	loader := NewLoader(dir, nil)
	records, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)

	a := records[0]
	assert.Equal(t, "A", a.EntityID)
	assert.Equal(t, "Jane Doe", a.DisplayName)
	assert.Equal(t, "+15551230001", a.PrimaryPhone)
	assert.Equal(t, []string{"+15551230001", "+15551230002"}, a.AllPhones)
	assert.Equal(t, "jane@example.com", a.PrimaryEmail)
	assert.Equal(t, "Austin", a.City)
	assert.Equal(t, "TX", a.State)
	assert.Equal(t, "78701", a.Zip)
	assert.Equal(t, "Ivan Torres", a.Owner)
	assert.Equal(t, 9800.50, a.ValueProxy)
	assert.NotNil(t, a.LastCallAt)
	assert.Equal(t, "Level 1", a.ReadinessLevel)

	b := records[1]
	assert.Equal(t, "Acme Barns", b.DisplayName)
	assert.Empty(t, b.PrimaryPhone)
	assert.Equal(t, 0.0, b.ValueProxy)
	assert.Nil(t, b.LastCallAt)
	assert.Equal(t, "Wolf Carports", b.Owner)

	assert.Equal(t, filepath.Join(dir, "FinalDataForDashboard_20250814_120000.csv"), loader.CurrentPath())
}

func TestLoadSynthesizesEntityID(t *testing.T) {
	dir := t.TempDir()
	csv := "Leads_First_Name,Leads_Last_Name\nJane,Doe\nJohn,Smith\n"
	path := filepath.Join(dir, "FinalDataForDashboard_20250814_120000.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	records, err := NewLoader(dir, nil).Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "0", records[0].EntityID)
	assert.Equal(t, "1", records[1].EntityID)
}

func TestLoadMissingCellsAreEmptyStrings(t *testing.T) {
	dir := t.TempDir()
	// Second row is short one field
	csv := "EntityId,Leads_City,Leads_State\n1,Austin,TX\n2,Tulsa\n"
	path := filepath.Join(dir, "FinalDataForDashboard_20250814_120000.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	records, err := NewLoader(dir, nil).Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "", records[1].Field("Leads_State"))
	assert.Equal(t, "Tulsa", records[1].City)
}

func TestLoadOverlayWins(t *testing.T) {
	dir := t.TempDir()
	writeSampleSnapshot(t, dir)

	overlay := func() ([]models.ReadinessRecord, error) {
		return []models.ReadinessRecord{
			{EntityID: "A", Level: "Level 3", Score: 6.0},
		}, nil
	}

	records, err := NewLoader(dir, overlay).Load()
	require.NoError(t, err)

	a := records[0]
	assert.Equal(t, "Level 3", a.ReadinessLevel, "stored readiness must win over the snapshot column")
	require.NotNil(t, a.ReadinessScore)
	assert.Equal(t, 6.0, *a.ReadinessScore)

	// Entity without a stored row keeps the snapshot value
	b := records[1]
	assert.Equal(t, "", b.ReadinessLevel)
	assert.Nil(t, b.ReadinessScore)
}

func TestLoadOverlayUnavailableDegrades(t *testing.T) {
	dir := t.TempDir()
	writeSampleSnapshot(t, dir)

	overlay := func() ([]models.ReadinessRecord, error) {
		return nil, errors.New("database is locked")
	}

	records, err := NewLoader(dir, overlay).Load()
	require.NoError(t, err, "overlay failure must not fail the load")
	assert.Equal(t, "Level 1", records[0].ReadinessLevel)
}

func TestLoadSourceNotFound(t *testing.T) {
	_, err := NewLoader(t.TempDir(), nil).Load()
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestLoadCacheReusedUntilMtimeChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeSampleSnapshot(t, dir)

	loader := NewLoader(dir, nil)
	records, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Rewrite the file with one row but keep the old mtime: the cached
	// table is reused.
	info, err := os.Stat(path)
	require.NoError(t, err)
	short := "EntityId\nZ\n"
	require.NoError(t, os.WriteFile(path, []byte(short), 0644))
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	records, err = loader.Load()
	require.NoError(t, err)
	assert.Len(t, records, 2, "unchanged mtime should serve the cached parse")

	// A changed mtime forces a re-parse
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))
	records, err = loader.Load()
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Explicit invalidation also forces a re-parse
	loader.Invalidate()
	records, err = loader.Load()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
