package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"apexrun/internal/session"
)

// setupTestStore opens a fresh database in a temp dir
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

var equalTimes = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

func testRecord(source string, start time.Time) session.Record {
	rec := session.Record{
		ID:        session.NewID(source, start),
		Source:    source,
		Name:      "Morning Run",
		StartTime: start,
		Distance:  1234.5,
		Duration:  600.25,
		Samples: []session.Sample{
			{
				Time:      start,
				Lat:       floatPtr(51.5007),
				Lng:       floatPtr(-0.1246),
				Altitude:  floatPtr(12.3),
				Distance:  floatPtr(0),
				HeartRate: intPtr(120),
				Cadence:   intPtr(170),
			},
			// Sensors dropped out: every optional field nil
			{Time: start.Add(1500 * time.Millisecond)},
			// Repeated timestamp keeps its position
			{Time: start.Add(1500 * time.Millisecond), Distance: floatPtr(6.1)},
			{Time: start.Add(600250 * time.Millisecond), Distance: floatPtr(1234.5), HeartRate: intPtr(161)},
		},
	}
	return rec
}

func TestSessionRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	start := time.Date(2024, 5, 12, 6, 30, 15, 123456789, time.FixedZone("CEST", 2*3600))
	rec := testRecord("run.fit", start)

	res, err := s.SaveSessions(ctx, []session.Record{rec})
	if err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}
	if res.Inserted != 1 || res.Skipped != 0 {
		t.Errorf("SaveSessions() = %+v, want 1 inserted", res)
	}

	got, err := s.GetSession(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if diff := cmp.Diff(rec, *got, equalTimes); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionKeepsLocalCalendar(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// 23:30 on the 31st in New York is already the 1st in UTC
	eastern := time.FixedZone("EST", -5*3600)
	start := time.Date(2024, 1, 31, 23, 30, 0, 0, eastern)
	utc := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	if _, err := s.SaveSessions(ctx, []session.Record{testRecord("late.fit", start), testRecord("utc.fit", utc)}); err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}

	history, err := s.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}

	got := history[0].StartTime
	if _, off := got.Zone(); off != -5*3600 {
		t.Errorf("offset = %d, want %d", off, -5*3600)
	}
	if got.Month() != time.January || got.Day() != 31 || got.Hour() != 23 {
		t.Errorf("StartTime = %v, want Jan 31 23:30 local", got)
	}
	if !history[0].Samples[1].Time.Equal(start.Add(1500 * time.Millisecond)) {
		t.Errorf("sample time = %v", history[0].Samples[1].Time)
	}
	if history[1].StartTime.Location() != time.UTC {
		t.Errorf("UTC start loaded in %v", history[1].StartTime.Location())
	}
}

func TestSaveSessionsDedupes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	start := time.Date(2024, 5, 12, 6, 30, 0, 0, time.UTC)
	a := testRecord("a.fit", start)
	b := testRecord("b.tcx", start.Add(24*time.Hour))

	if _, err := s.SaveSessions(ctx, []session.Record{a}); err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}

	// Same source and start in another zone is the same session
	again := testRecord("a.fit", start.In(time.FixedZone("EST", -5*3600)))
	again.Name = "Renamed"
	res, err := s.SaveSessions(ctx, []session.Record{again, b})
	if err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}
	if res.Inserted != 1 || res.Skipped != 1 {
		t.Errorf("SaveSessions() = %+v, want 1 inserted and 1 skipped", res)
	}

	count, err := s.CountSessions(ctx)
	if err != nil {
		t.Fatalf("CountSessions() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountSessions() = %d, want 2", count)
	}

	got, err := s.GetSession(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Name != "Morning Run" {
		t.Errorf("Name = %q, merge should keep the stored session", got.Name)
	}
}

func TestLoadHistory(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 12, 6, 30, 0, 0, time.UTC)
	later := testRecord("later.fit", base.Add(48*time.Hour))
	earlier := testRecord("earlier.fit", base)
	bare := session.Record{
		ID: "manual-1", Source: "manual", Name: "Treadmill",
		StartTime: base.Add(24 * time.Hour), Distance: 5000, Duration: 1800,
	}

	if _, err := s.SaveSessions(ctx, []session.Record{later, bare, earlier}); err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}

	history, err := s.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory() error = %v", err)
	}
	want := []session.Record{earlier, bare, later}
	if diff := cmp.Diff(want, history, equalTimes); diff != "" {
		t.Errorf("LoadHistory() mismatch (-want +got):\n%s", diff)
	}
}

func TestListSessions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 12, 6, 30, 0, 0, time.UTC)
	var recs []session.Record
	for i := 0; i < 3; i++ {
		recs = append(recs, testRecord("run.fit", base.Add(time.Duration(i)*time.Hour)))
	}
	if _, err := s.SaveSessions(ctx, recs); err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}

	got, err := s.ListSessions(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != recs[2].ID || got[1].ID != recs[1].ID {
		t.Errorf("ListSessions() not newest first: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].SampleCount != 4 || !got[0].HasHeartRate {
		t.Errorf("summary = %+v, want 4 samples with heart rate", got[0])
	}
}

func TestUpsertAndDeleteSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rec := testRecord("strava:42", time.Date(2024, 5, 12, 6, 30, 0, 0, time.UTC))
	if err := s.UpsertSession(ctx, rec); err != nil {
		t.Fatalf("UpsertSession() error = %v", err)
	}

	rec.Name = "Updated"
	rec.Samples = rec.Samples[:1]
	if err := s.UpsertSession(ctx, rec); err != nil {
		t.Fatalf("UpsertSession() again error = %v", err)
	}
	got, err := s.GetSession(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Name != "Updated" || len(got.Samples) != 1 {
		t.Errorf("after upsert: name %q, %d samples; want Updated, 1", got.Name, len(got.Samples))
	}

	if err := s.DeleteSession(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := s.GetSession(ctx, rec.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession() after delete error = %v, want ErrSessionNotFound", err)
	}
	if err := s.DeleteSession(ctx, rec.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("DeleteSession() twice error = %v, want ErrSessionNotFound", err)
	}

	var orphans int
	if err := s.QueryRow("SELECT COUNT(*) FROM samples").Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("%d samples left after delete", orphans)
	}
}

func TestAuth(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.GetAuth(ctx); !errors.Is(err, ErrNoAuth) {
		t.Fatalf("GetAuth() on empty db error = %v, want ErrNoAuth", err)
	}
	if err := s.UpdateTokens(ctx, "a", "r", time.Now()); !errors.Is(err, ErrNoAuth) {
		t.Errorf("UpdateTokens() on empty db error = %v, want ErrNoAuth", err)
	}

	expires := time.Unix(1717000000, 0)
	if err := s.SaveAuth(ctx, &Auth{AthleteID: 7, AthleteName: "Ada Byron", AccessToken: "acc", RefreshToken: "ref", ExpiresAt: expires}); err != nil {
		t.Fatalf("SaveAuth() error = %v", err)
	}
	if err := s.UpdateTokens(ctx, "acc2", "ref2", expires.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateTokens() error = %v", err)
	}

	got, err := s.GetAuth(ctx)
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	want := &Auth{AthleteID: 7, AthleteName: "Ada Byron", AccessToken: "acc2", RefreshToken: "ref2", ExpiresAt: expires.Add(time.Hour)}
	if diff := cmp.Diff(want, got, equalTimes); diff != "" {
		t.Errorf("GetAuth() mismatch (-want +got):\n%s", diff)
	}

	if err := s.DeleteAuth(ctx); err != nil {
		t.Fatalf("DeleteAuth() error = %v", err)
	}
	if _, err := s.GetAuth(ctx); !errors.Is(err, ErrNoAuth) {
		t.Errorf("GetAuth() after DeleteAuth error = %v, want ErrNoAuth", err)
	}
}

func TestSyncState(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v, err := s.GetSyncState(ctx, "missing")
	if err != nil || v != "" {
		t.Errorf("GetSyncState(missing) = %q, %v; want empty", v, err)
	}

	ts := time.Date(2024, 5, 12, 6, 30, 0, 5, time.UTC)
	if err := s.SetSyncTime(ctx, SyncKeyLastActivity, ts); err != nil {
		t.Fatalf("SetSyncTime() error = %v", err)
	}
	got, err := s.GetSyncTime(ctx, SyncKeyLastActivity)
	if err != nil {
		t.Fatalf("GetSyncTime() error = %v", err)
	}
	if !got.Equal(ts) {
		t.Errorf("GetSyncTime() = %v, want %v", got, ts)
	}
}
