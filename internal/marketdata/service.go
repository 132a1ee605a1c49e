package marketdata

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ratesdash/internal/storage"
)

// Snapshots older than this are not served as fallbacks. The upstream
// providers update daily; a week-old curve is still better than an empty
// dashboard on an ephemeral filesystem.
const snapshotMaxAge = 7 * 24 * time.Hour

// Service aggregates the upstream market-data providers behind a TTL
// cache and a last-good snapshot store.
type Service struct {
	fred      *FREDClient
	cache     *Cache
	snapshots *storage.Store
}

// NewService builds a Service. store may be nil, which disables snapshot
// fallbacks and the data-changed feed.
func NewService(fredAPIKey string, store *storage.Store, ttl time.Duration) *Service {
	return &Service{
		fred:      NewFREDClient(fredAPIKey),
		cache:     NewCache(ttl),
		snapshots: store,
	}
}

// Rates returns the current Treasury curve payload, served from cache
// when fresh. On upstream failure the last snapshot is served instead.
func (s *Service) Rates(ctx context.Context) (*RatesData, error) {
	if v, ok := s.cache.Get("rates"); ok {
		return v.(*RatesData), nil
	}
	data, err := s.fetchRates(ctx)
	if err != nil {
		var snap RatesData
		if s.loadSnapshot("rates", &snap) {
			log.Printf("rates: serving snapshot after fetch error: %v", err)
			return &snap, nil
		}
		return nil, err
	}
	s.cache.Set("rates", data)
	s.saveSnapshot("rates", data)
	return data, nil
}

// Macro returns the macro-indicator payload with the same cache and
// snapshot policy as Rates.
func (s *Service) Macro(ctx context.Context) (MacroData, error) {
	if v, ok := s.cache.Get("macro"); ok {
		return v.(MacroData), nil
	}
	data, err := s.fetchMacro(ctx)
	if err != nil {
		var snap MacroData
		if s.loadSnapshot("macro", &snap) {
			log.Printf("macro: serving snapshot after fetch error: %v", err)
			return snap, nil
		}
		return nil, err
	}
	s.cache.Set("macro", data)
	s.saveSnapshot("macro", data)
	return data, nil
}

// FedWatch returns rate-decision probabilities. The fetch chain has its
// own fallbacks and only fails when even the neutral estimate cannot be
// built.
func (s *Service) FedWatch(ctx context.Context) (*FedWatchData, error) {
	if v, ok := s.cache.Get("fedwatch"); ok {
		return v.(*FedWatchData), nil
	}
	data, err := s.fetchFedWatch(ctx)
	if err != nil {
		var snap FedWatchData
		if s.loadSnapshot("fedwatch", &snap) {
			log.Printf("fedwatch: serving snapshot after fetch error: %v", err)
			return &snap, nil
		}
		return nil, err
	}
	s.cache.Set("fedwatch", data)
	s.saveSnapshot("fedwatch", data)
	return data, nil
}

// Refresh fetches all data types fresh, repopulating cache and
// snapshots. It returns the types whose payload changed since the last
// stored snapshot. Used for the boot prewarm and the periodic updater.
func (s *Service) Refresh(ctx context.Context) []string {
	var changed []string
	if data, err := s.fetchRates(ctx); err != nil {
		log.Printf("refresh: rates: %v", err)
	} else {
		s.cache.Set("rates", data)
		if s.saveSnapshot("rates", data) {
			changed = append(changed, "rates")
		}
	}
	if data, err := s.fetchMacro(ctx); err != nil {
		log.Printf("refresh: macro: %v", err)
	} else {
		s.cache.Set("macro", data)
		if s.saveSnapshot("macro", data) {
			changed = append(changed, "macro")
		}
	}
	if data, err := s.fetchFedWatch(ctx); err != nil {
		log.Printf("refresh: fedwatch: %v", err)
	} else {
		s.cache.Set("fedwatch", data)
		if s.saveSnapshot("fedwatch", data) {
			changed = append(changed, "fedwatch")
		}
	}
	return changed
}

func (s *Service) saveSnapshot(dataType string, v any) (changed bool) {
	if s.snapshots == nil {
		return false
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("snapshot: marshal %s: %v", dataType, err)
		return false
	}
	changed, err = s.snapshots.Save(dataType, payload)
	if err != nil {
		log.Printf("snapshot: save %s: %v", dataType, err)
		return false
	}
	return changed
}

func (s *Service) loadSnapshot(dataType string, v any) bool {
	if s.snapshots == nil {
		return false
	}
	payload, _, err := s.snapshots.Load(dataType, snapshotMaxAge)
	if err != nil {
		log.Printf("snapshot: load %s: %v", dataType, err)
		return false
	}
	if payload == nil {
		return false
	}
	return json.Unmarshal(payload, v) == nil
}
