package storage

import (
	"encoding/json"
	"sort"

	"github.com/hakim/phishscope/internal/models"
	"go.etcd.io/bbolt"
)

// SaveAnalysis persists an analysis record and updates the per-domain index.
// When the store holds more than its retention cap afterwards, the oldest
// records are pruned in the same transaction.
func (s *Store) SaveAnalysis(record *models.AnalysisRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}

		analyses := tx.Bucket([]byte(bucketAnalyses))
		if err := analyses.Put([]byte(record.ID), data); err != nil {
			return err
		}

		// Update the domain index (registrable domain -> []analysis_id).
		if record.Domain != "" {
			if err := appendToIndex(tx, record.Domain, record.ID); err != nil {
				return err
			}
		}

		if s.retention > 0 {
			return pruneOldest(tx, s.retention)
		}
		return nil
	})
}

// GetAnalysis retrieves an analysis record by ID. Missing IDs yield (nil, nil).
func (s *Store) GetAnalysis(id string) (*models.AnalysisRecord, error) {
	var record *models.AnalysisRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		analyses := tx.Bucket([]byte(bucketAnalyses))
		data := analyses.Get([]byte(id))
		if data == nil {
			return nil
		}

		record = &models.AnalysisRecord{}
		return json.Unmarshal(data, record)
	})

	return record, err
}

// ListAnalyses retrieves all analysis records for a registrable domain,
// sorted newest-first.
func (s *Store) ListAnalyses(domain string) ([]*models.AnalysisRecord, error) {
	var records []*models.AnalysisRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		index := tx.Bucket([]byte(bucketAnalysisIndex))
		data := index.Get([]byte(domain))
		if data == nil {
			return nil
		}

		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}

		analyses := tx.Bucket([]byte(bucketAnalyses))
		for _, id := range ids {
			recordData := analyses.Get([]byte(id))
			if recordData != nil {
				var record models.AnalysisRecord
				if err := json.Unmarshal(recordData, &record); err != nil {
					return err
				}
				records = append(records, &record)
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sortNewestFirst(records)
	return records, nil
}

// RecentAnalyses returns the most recent records across all domains,
// newest-first, capped at limit (non-positive means no cap).
func (s *Store) RecentAnalyses(limit int) ([]*models.AnalysisRecord, error) {
	var records []*models.AnalysisRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		analyses := tx.Bucket([]byte(bucketAnalyses))
		return analyses.ForEach(func(_, data []byte) error {
			var record models.AnalysisRecord
			if err := json.Unmarshal(data, &record); err != nil {
				return err
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// appendToIndex adds id to the domain's id list if not already present.
func appendToIndex(tx *bbolt.Tx, domain, id string) error {
	index := tx.Bucket([]byte(bucketAnalysisIndex))
	domainKey := []byte(domain)

	var ids []string
	if existing := index.Get(domainKey); existing != nil {
		if err := json.Unmarshal(existing, &ids); err != nil {
			return err
		}
	}

	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	ids = append(ids, id)

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return index.Put(domainKey, data)
}

// pruneOldest deletes the oldest analyses until at most retention remain,
// removing pruned ids from the domain index as it goes.
func pruneOldest(tx *bbolt.Tx, retention int) error {
	analyses := tx.Bucket([]byte(bucketAnalyses))

	type entry struct {
		id     string
		domain string
		record models.AnalysisRecord
	}

	var all []entry
	err := analyses.ForEach(func(key, data []byte) error {
		var record models.AnalysisRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		all = append(all, entry{id: string(key), domain: record.Domain, record: record})
		return nil
	})
	if err != nil {
		return err
	}

	excess := len(all) - retention
	if excess <= 0 {
		return nil
	}

	// Oldest first.
	sort.Slice(all, func(i, j int) bool {
		return all[i].record.Timestamp.Before(all[j].record.Timestamp)
	})

	for _, victim := range all[:excess] {
		if err := analyses.Delete([]byte(victim.id)); err != nil {
			return err
		}
		if victim.domain != "" {
			if err := removeFromIndex(tx, victim.domain, victim.id); err != nil {
				return err
			}
		}
	}
	return nil
}

// removeFromIndex drops id from the domain's id list, deleting the list
// entirely when it empties.
func removeFromIndex(tx *bbolt.Tx, domain, id string) error {
	index := tx.Bucket([]byte(bucketAnalysisIndex))
	domainKey := []byte(domain)

	existing := index.Get(domainKey)
	if existing == nil {
		return nil
	}

	var ids []string
	if err := json.Unmarshal(existing, &ids); err != nil {
		return err
	}

	kept := ids[:0]
	for _, existingID := range ids {
		if existingID != id {
			kept = append(kept, existingID)
		}
	}

	if len(kept) == 0 {
		return index.Delete(domainKey)
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	return index.Put(domainKey, data)
}

func sortNewestFirst(records []*models.AnalysisRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}
