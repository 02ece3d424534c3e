package history

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
)

type memStorage struct {
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func (m *memStorage) Load() ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *memStorage) Save(data []byte) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func recordAt(ts time.Time, ph float64) Record {
	return Record{TS: ts, PH: sensor.Float(ph)}
}

func TestStoreStartsEmptyWhenNothingPersisted(t *testing.T) {
	store := NewStore(&memStorage{}, 10, zap.NewNop())
	assert.Equal(t, 0, store.Len())
}

func TestStoreStartsEmptyOnCorruptBlob(t *testing.T) {
	storage := &memStorage{data: []byte(`{"not": "an array"`)}
	store := NewStore(storage, 10, zap.NewNop())
	assert.Equal(t, 0, store.Len())
}

func TestStoreStartsEmptyOnLoadError(t *testing.T) {
	storage := &memStorage{loadErr: errors.New("disk on fire")}
	store := NewStore(storage, 10, zap.NewNop())
	assert.Equal(t, 0, store.Len())
}

func TestStoreAppendPersistsAndReloads(t *testing.T) {
	storage := &memStorage{}
	store := NewStore(storage, 10, zap.NewNop())

	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	store.Append(recordAt(ts, 7.1))
	store.Append(recordAt(ts.Add(time.Minute), 7.2))
	require.Equal(t, 2, storage.saves)

	reloaded := NewStore(storage, 10, zap.NewNop())
	require.Equal(t, 2, reloaded.Len())
	all := reloaded.All()
	require.NotNil(t, all[0].PH)
	assert.Equal(t, 7.1, *all[0].PH)
	require.NotNil(t, all[1].PH)
	assert.Equal(t, 7.2, *all[1].PH)
}

func TestStoreEvictsOldestBeyondCapacity(t *testing.T) {
	store := NewStore(&memStorage{}, 5, zap.NewNop())

	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	for i := 0; i < 7; i++ {
		n := store.Append(recordAt(base.Add(time.Duration(i)*time.Minute), float64(i)))
		assert.LessOrEqual(t, n, 5)
	}

	all := store.All()
	require.Len(t, all, 5)
	// Records 0 and 1 were evicted.
	assert.Equal(t, 2.0, *all[0].PH)
	assert.Equal(t, 6.0, *all[4].PH)
}

func TestStoreTruncatesOversizedPersistedBlob(t *testing.T) {
	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	records := make([]Record, 8)
	for i := range records {
		records[i] = recordAt(base.Add(time.Duration(i)*time.Minute), float64(i))
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)

	store := NewStore(&memStorage{data: data}, 5, zap.NewNop())
	all := store.All()
	require.Len(t, all, 5)
	assert.Equal(t, 3.0, *all[0].PH)
}

func TestStoreSwallowsSaveFailures(t *testing.T) {
	storage := &memStorage{saveErr: errors.New("quota exceeded")}
	store := NewStore(storage, 10, zap.NewNop())

	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	n := store.Append(recordAt(ts, 7.1))

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.Len())
}

func TestStoreNullAndZeroSurviveRoundTrip(t *testing.T) {
	storage := &memStorage{}
	store := NewStore(storage, 10, zap.NewNop())

	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	store.Append(Record{TS: ts, PH: sensor.Float(0), Turbidez: nil})

	reloaded := NewStore(storage, 10, zap.NewNop()).All()
	require.Len(t, reloaded, 1)
	require.NotNil(t, reloaded[0].PH)
	assert.Equal(t, 0.0, *reloaded[0].PH)
	assert.Nil(t, reloaded[0].Turbidez)
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	storage := NewFileStorage(path)

	data, err := storage.Load()
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, storage.Save([]byte(`[{"ts":"2026-03-14T10:00:00Z"}]`)))
	data, err = storage.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestStoreQueryFilters(t *testing.T) {
	store := NewStore(&memStorage{}, 100, zap.NewNop())
	for day := 1; day <= 3; day++ {
		ts := time.Date(2026, 3, day, 12, 0, 0, 0, time.Local)
		store.Append(recordAt(ts, float64(day)))
	}

	got := store.Query(Filter{Mode: ModeDay, Day: time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)})
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, *got[0].PH)
}
