//Package correlation keeps the bidirectional mapping between platform device ids
//and Sigfox device ids.
package correlation

import (
	"sync"
)

//Record is a correlated pair of device identifiers together with the template
//ids the platform device declared when it was correlated
type Record struct {
	PlatformID  string
	NetworkID   string
	TemplateIDs []string
}

func (r *Record) clone() Record {
	c := *r
	c.TemplateIDs = append([]string(nil), r.TemplateIDs...)
	return c
}

//Store is a one to one mapping with an index on each identifier. Both indices
//point at the same records and are only ever changed together.
//
//All methods are safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	byPlatform map[string]*Record
	byNetwork  map[string]*Record
}

//NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		byPlatform: make(map[string]*Record),
		byNetwork:  make(map[string]*Record),
	}
}

//Correlate inserts or replaces the pair. Any earlier pair that shares either
//identifier is removed first, so the mapping stays one to one.
func (s *Store) Correlate(platformID, networkID string, templateIDs []string) {
	record := &Record{
		PlatformID:  platformID,
		NetworkID:   networkID,
		TemplateIDs: append([]string(nil), templateIDs...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.unlink(s.byPlatform[platformID])
	s.unlink(s.byNetwork[networkID])

	s.byPlatform[platformID] = record
	s.byNetwork[networkID] = record
}

//Decorrelate removes the records indexed by platformID and by networkID.
//Absent keys are ignored.
func (s *Store) Decorrelate(platformID, networkID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unlink(s.byPlatform[platformID])
	s.unlink(s.byNetwork[networkID])
}

//LookupPlatformID returns the record correlated with a Sigfox device id
func (s *Store) LookupPlatformID(networkID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byNetwork[networkID]
	if !ok {
		return Record{}, false
	}
	return record.clone(), true
}

//LookupNetworkID returns the Sigfox device id correlated with a platform device id
func (s *Store) LookupNetworkID(platformID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byPlatform[platformID]
	if !ok {
		return "", false
	}
	return record.NetworkID, true
}

//Len returns the number of correlated pairs
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byPlatform)
}

//Records returns a snapshot of all correlated pairs
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.byPlatform))
	for _, r := range s.byPlatform {
		records = append(records, r.clone())
	}
	return records
}

// unlink must be called with the write lock held
func (s *Store) unlink(record *Record) {
	if record == nil {
		return
	}
	delete(s.byPlatform, record.PlatformID)
	delete(s.byNetwork, record.NetworkID)
}
