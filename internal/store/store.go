// Package store provides a thin bbolt wrapper for plateful's on-device data.
//
// Design philosophy: this is the durability layer for the sync stores, not a
// transparent cache of the backend. Each key is written independently by the
// store that owns it; there is no transactional grouping across keys beyond
// what a single bbolt update gives.
//
// Buckets:
//
//	diet_state — today's working state: goal, date, meals, water
//	daily_logs — frozen and in-progress per-day snapshots keyed by ISO date
//	streaks    — the derived streak aggregate (single key)
//	profile    — last-known profile for offline display
//	_meta      — internal: schema version, created_at
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/plateful/plateful/internal/model"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

// Bucket name constants.
var (
	bucketDietState = []byte("diet_state")
	bucketDailyLogs = []byte("daily_logs")
	bucketStreaks   = []byte("streaks")
	bucketProfile   = []byte("profile")
	bucketInternal  = []byte("_meta")
)

// Keys inside the diet_state bucket. Each slice of today's working state is
// read and written independently, matching the per-key persistence contract.
var (
	keyGoal  = []byte("goal")
	keyDate  = []byte("date")
	keyMeals = []byte("meals")
	keyWater = []byte("water")
)

const (
	keyStreakData  = "current"
	keyUserProfile = "current"
)

// AllBuckets lists every top-level bucket for stats and clear operations.
var AllBuckets = []string{"diet_state", "daily_logs", "streaks", "profile"}

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
// Runs schema migrations on every open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

// migrate ensures all buckets exist and schema is current.
func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketDietState, bucketDailyLogs, bucketStreaks, bucketProfile, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ─── Generic JSON helpers ─────────────────────────────────────────────────────

func (s *Store) putJSON(bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", bucket, key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(key, data)
	})
}

// getJSON reads bucket/key into out. Returns (false, nil) when the key is
// absent.
func (s *Store) getJSON(bucket, key []byte, out any) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get(key)
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, out)
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// ─── Diet Working State ───────────────────────────────────────────────────────

// PutGoal stores the selected goal.
func (s *Store) PutGoal(g model.Goal) error {
	return s.putJSON(bucketDietState, keyGoal, g)
}

// GetGoal retrieves the selected goal.
// Returns (goal, true, nil) if set, (zero, false, nil) if not.
func (s *Store) GetGoal() (model.Goal, bool, error) {
	var g model.Goal
	found, err := s.getJSON(bucketDietState, keyGoal, &g)
	return g, found, err
}

// PutTodayDate stores the date the working state belongs to.
func (s *Store) PutTodayDate(date string) error {
	return s.putJSON(bucketDietState, keyDate, date)
}

// GetTodayDate retrieves the working-state date.
func (s *Store) GetTodayDate() (string, bool, error) {
	var d string
	found, err := s.getJSON(bucketDietState, keyDate, &d)
	return d, found, err
}

// PutTodayMeals stores today's meal list.
func (s *Store) PutTodayMeals(meals []model.MealLog) error {
	return s.putJSON(bucketDietState, keyMeals, meals)
}

// GetTodayMeals retrieves today's meal list.
func (s *Store) GetTodayMeals() ([]model.MealLog, bool, error) {
	var meals []model.MealLog
	found, err := s.getJSON(bucketDietState, keyMeals, &meals)
	return meals, found, err
}

// PutWaterIntake stores today's water count.
func (s *Store) PutWaterIntake(glasses int) error {
	return s.putJSON(bucketDietState, keyWater, glasses)
}

// GetWaterIntake retrieves today's water count.
func (s *Store) GetWaterIntake() (int, bool, error) {
	var n int
	found, err := s.getJSON(bucketDietState, keyWater, &n)
	return n, found, err
}

// ─── Daily Logs ───────────────────────────────────────────────────────────────

// PutDailyLog writes the per-day snapshot, keyed by its ISO date.
// Writing the same date again overwrites — the current day is resealed after
// every mutation.
func (s *Store) PutDailyLog(log model.DailyLog) error {
	if log.Date == "" {
		return fmt.Errorf("daily log missing date")
	}
	return s.putJSON(bucketDailyLogs, []byte(log.Date), log)
}

// GetDailyLog retrieves the snapshot for one date.
// Returns (log, true, nil) if found, (zero, false, nil) if not found.
func (s *Store) GetDailyLog(date string) (model.DailyLog, bool, error) {
	var log model.DailyLog
	found, err := s.getJSON(bucketDailyLogs, []byte(date), &log)
	return log, found, err
}

// ListDailyLogs returns all stored daily logs sorted by date ascending.
// bbolt iterates keys in byte order, which for ISO dates is date order, but
// the sort keeps the guarantee independent of storage details.
func (s *Store) ListDailyLogs() ([]model.DailyLog, error) {
	var logs []model.DailyLog
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDailyLogs).ForEach(func(k, v []byte) error {
			var l model.DailyLog
			if err := json.Unmarshal(v, &l); err != nil {
				return err
			}
			logs = append(logs, l)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Date < logs[j].Date })
	return logs, nil
}

// ListDailyLogsRange returns logs with from <= date <= to (ISO strings,
// either may be empty for an open end), sorted ascending.
func (s *Store) ListDailyLogsRange(from, to string) ([]model.DailyLog, error) {
	logs, err := s.ListDailyLogs()
	if err != nil {
		return nil, err
	}
	out := logs[:0]
	for _, l := range logs {
		if from != "" && l.Date < from {
			continue
		}
		if to != "" && l.Date > to {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// ─── Streaks ──────────────────────────────────────────────────────────────────

// PutStreak stores the derived streak aggregate.
func (s *Store) PutStreak(sd model.StreakData) error {
	return s.putJSON(bucketStreaks, []byte(keyStreakData), sd)
}

// GetStreak retrieves the streak aggregate.
func (s *Store) GetStreak() (model.StreakData, bool, error) {
	var sd model.StreakData
	found, err := s.getJSON(bucketStreaks, []byte(keyStreakData), &sd)
	return sd, found, err
}

// ─── Profile Cache ────────────────────────────────────────────────────────────

// PutProfile caches the last-known profile for offline display.
func (s *Store) PutProfile(p model.Profile) error {
	return s.putJSON(bucketProfile, []byte(keyUserProfile), p)
}

// GetProfile retrieves the cached profile.
func (s *Store) GetProfile() (model.Profile, bool, error) {
	var p model.Profile
	found, err := s.getJSON(bucketProfile, []byte(keyUserProfile), &p)
	return p, found, err
}

// DeleteProfile clears the cached profile (sign-out).
func (s *Store) DeleteProfile() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProfile).Delete([]byte(keyUserProfile))
	})
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// BucketStats holds row count and byte size for a single bucket.
type BucketStats struct {
	Name  string
	Count int
	Bytes int64
}

// Stats returns row counts and approximate sizes for all buckets.
func (s *Store) Stats() ([]BucketStats, error) {
	buckets := map[string][]byte{
		"diet_state": bucketDietState,
		"daily_logs": bucketDailyLogs,
		"streaks":    bucketStreaks,
		"profile":    bucketProfile,
	}

	var stats []BucketStats
	err := s.db.View(func(tx *bolt.Tx) error {
		for name, bname := range buckets {
			b := tx.Bucket(bname)
			if b == nil {
				continue
			}
			var count int
			var bytes int64
			b.ForEach(func(k, v []byte) error {
				count++
				bytes += int64(len(k) + len(v))
				return nil
			})
			stats = append(stats, BucketStats{Name: name, Count: count, Bytes: bytes})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats, nil
}

// ClearBucket deletes all entries in the named bucket.
func (s *Store) ClearBucket(name string) error {
	bname := []byte(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bname); err != nil {
			return fmt.Errorf("clearing bucket %s: %w", name, err)
		}
		_, err := tx.CreateBucket(bname)
		return err
	})
}

// ClearAll deletes all entries from every user-facing bucket.
func (s *Store) ClearAll() error {
	for _, name := range AllBuckets {
		if err := s.ClearBucket(name); err != nil {
			return err
		}
	}
	return nil
}
