package trading

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// NativeIDStorage translates securities to venue native identifiers
type NativeIDStorage interface {
	TryGetBySecurityID(storageName string, id SecurityID) (string, bool)
}

type nativeKey struct {
	code  string
	board string
}

func newNativeKey(id SecurityID) nativeKey {
	return nativeKey{code: id.Code, board: id.Board}
}

// NativeIDs is an in-memory NativeIDStorage, one table per storage name
type NativeIDs struct {
	locks    sync.Map
	mx       sync.Mutex
	storages map[string]map[nativeKey]string
}

func NewNativeIDs() *NativeIDs {
	return &NativeIDs{
		storages: make(map[string]map[nativeKey]string),
	}
}

func (s *NativeIDs) lock(storageName string) *sync.RWMutex {
	mxVal, ok := s.locks.Load(storageName)
	if !ok {
		mxVal, _ = s.locks.LoadOrStore(storageName, &sync.RWMutex{})
	}
	mx, _ := mxVal.(*sync.RWMutex)
	return mx
}

func (s *NativeIDs) table(storageName string, create bool) map[nativeKey]string {
	s.mx.Lock()
	defer s.mx.Unlock()
	table, ok := s.storages[storageName]
	if !ok && create {
		table = make(map[nativeKey]string)
		s.storages[storageName] = table
	}
	return table
}

// Add binds native to id inside storageName, replacing a previous binding
func (s *NativeIDs) Add(storageName string, id SecurityID, native string) {
	mx := s.lock(storageName)
	mx.Lock()
	defer mx.Unlock()
	s.table(storageName, true)[newNativeKey(id)] = native
}

func (s *NativeIDs) TryGetBySecurityID(storageName string, id SecurityID) (string, bool) {
	mx := s.lock(storageName)
	mx.RLock()
	defer mx.RUnlock()
	native, ok := s.table(storageName, false)[newNativeKey(id)]
	return native, ok
}

// TryGetByNativeID is the reverse lookup
func (s *NativeIDs) TryGetByNativeID(storageName string, native string) (SecurityID, bool) {
	mx := s.lock(storageName)
	mx.RLock()
	defer mx.RUnlock()
	for key, value := range s.table(storageName, false) {
		if value == native {
			return SecurityID{Code: key.code, Board: key.board, Native: native}, true
		}
	}
	return SecurityID{}, false
}

// Delete drops the whole storage
func (s *NativeIDs) Delete(storageName string) {
	mx := s.lock(storageName)
	mx.Lock()
	defer mx.Unlock()

	s.mx.Lock()
	delete(s.storages, storageName)
	s.mx.Unlock()
}

type nativeIDsFile struct {
	Storages map[string][]nativeIDsEntry `yaml:"storages"`
}

type nativeIDsEntry struct {
	Code   string `yaml:"code"`
	Board  string `yaml:"board"`
	Native string `yaml:"native"`
}

// LoadNativeIDs reads translation tables in the form
//
//	storages:
//	  gate-a:
//	    - {code: AAPL, board: NASDAQ, native: "265598"}
func LoadNativeIDs(r io.Reader) (*NativeIDs, error) {
	var file nativeIDsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, errors.WithMessage(err, "fail decode native ids")
	}

	storage := NewNativeIDs()
	for name, entries := range file.Storages {
		for i, entry := range entries {
			if entry.Code == "" || entry.Native == "" {
				return nil, errors.Errorf("native ids %s[%d]: code and native are required", name, i)
			}
			storage.Add(name, SecurityID{Code: entry.Code, Board: entry.Board}, entry.Native)
		}
	}
	return storage, nil
}
