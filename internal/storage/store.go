package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/qubesim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

var (
	ErrRunNotFound  = errors.New("storage: run not found")
	ErrAmbiguousRun = errors.New("storage: run id prefix is ambiguous")
)

var traceHeader = []string{"time", "theta", "alpha", "theta_dot", "alpha_dot", "voltage", "reward"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Backend    string             `json:"backend"`
	BeginDown  bool               `json:"begin_down"`
	Controller string             `json:"controller"`
	Frequency  float64            `json:"frequency"`
	Seed       uint64             `json:"seed"`
	Steps      int                `json:"steps"`
	Resets     []int              `json:"resets"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes meta and the trace of res under a fresh run id and returns it.
// Metadata fields derived from res are filled in.
func (s *Store) Save(meta RunMetadata, res *dynamo.Result) (string, error) {
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Steps = res.Steps
	meta.Resets = res.Resets
	meta.Metrics = res.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeTrace(filepath.Join(runDir, traceFile), res); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeTrace(path string, res *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i, x := range res.States {
		row := make([]string, 0, len(traceHeader))
		row = append(row, format(res.Times[i]))
		for _, v := range x {
			row = append(row, format(v))
		}
		voltage := 0.0
		if i < len(res.Controls) && len(res.Controls[i]) > 0 {
			voltage = res.Controls[i][0]
		}
		reward := 0.0
		if i < len(res.Rewards) {
			reward = res.Rewards[i]
		}
		row = append(row, format(voltage), format(reward))
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.readMetadata(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

// Resolve expands a unique id prefix to the full run id.
func (s *Store) Resolve(prefix string) (string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
		}
		return "", err
	}

	var matches []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if entry.Name() == prefix {
			return prefix, nil
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			matches = append(matches, entry.Name())
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%w: %s matches %d runs", ErrAmbiguousRun, prefix, len(matches))
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}
	return s.readMetadata(id)
}

func (s *Store) readMetadata(id string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace reads the stored trace back. Rows that fail to parse are
// skipped.
func (s *Store) LoadTrace(runID string) (*dynamo.Result, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, id, traceFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	res := &dynamo.Result{}
	if len(records) < 2 {
		return res, nil
	}
	for _, record := range records[1:] {
		if len(record) != len(traceHeader) {
			continue
		}
		vals := make([]float64, len(record))
		ok := true
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		res.Times = append(res.Times, vals[0])
		res.States = append(res.States, dynamo.State(vals[1:5]))
		res.Controls = append(res.Controls, dynamo.Control{vals[5]})
		res.Rewards = append(res.Rewards, vals[6])
	}
	res.Steps = len(res.States)

	if meta, err := s.readMetadata(id); err == nil {
		res.Resets = meta.Resets
		res.Metrics = meta.Metrics
	}
	return res, nil
}
