package storage

import (
	"context"
	"testing"

	"cardseer/internal/guess"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	config := DefaultConfig(":memory:")
	config.AutoMigrate = true
	db, err := Open(config)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func TestSnapshotRoundTrip(t *testing.T) {
	svc := NewService(testDB(t), nil)
	ctx := context.Background()

	snap := &Snapshot{
		Guesses: []guess.Guess{
			{CardID: "marine", Feedback: guess.FeedbackClose},
			{CardID: "muta", Feedback: guess.FeedbackNotClose},
		},
		SortBy: "number",
	}

	if err := svc.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	loaded, err := svc.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadSnapshot() returned nil after save")
	}
	if len(loaded.Guesses) != 2 || loaded.SortBy != "number" {
		t.Errorf("loaded snapshot = %+v", loaded)
	}
	if loaded.Guesses[0].CardID != "marine" || loaded.Guesses[0].Feedback != guess.FeedbackClose {
		t.Errorf("first guess = %+v", loaded.Guesses[0])
	}
}

func TestSnapshotOverwrite(t *testing.T) {
	svc := NewService(testDB(t), nil)
	ctx := context.Background()

	if err := svc.SaveSnapshot(ctx, &Snapshot{SortBy: "race"}); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	if err := svc.SaveSnapshot(ctx, &Snapshot{SortBy: "value"}); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	loaded, err := svc.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if loaded.SortBy != "value" {
		t.Errorf("SortBy = %q, want latest write", loaded.SortBy)
	}
}

func TestLoadSnapshotEmpty(t *testing.T) {
	svc := NewService(testDB(t), nil)

	loaded, err := svc.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if loaded != nil {
		t.Errorf("LoadSnapshot() on empty store = %+v, want nil", loaded)
	}
}

func TestClearSnapshot(t *testing.T) {
	svc := NewService(testDB(t), nil)
	ctx := context.Background()

	if err := svc.SaveSnapshot(ctx, &Snapshot{SortBy: "race"}); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	if err := svc.ClearSnapshot(ctx); err != nil {
		t.Fatalf("ClearSnapshot() error: %v", err)
	}

	loaded, err := svc.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if loaded != nil {
		t.Error("snapshot still present after clear")
	}
}

func TestEncryptedSnapshot(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Fast Argon2 parameters for tests.
	enc := &EncryptionConfig{Password: "hunter2", Argon2Time: 1, Argon2Memory: 64, Argon2Threads: 1}
	svc := NewService(db, enc)

	snap := &Snapshot{
		Guesses: []guess.Guess{{CardID: "tank", Feedback: guess.FeedbackClose}},
		SortBy:  "race",
	}
	if err := svc.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	t.Run("round trip with passphrase", func(t *testing.T) {
		loaded, err := svc.LoadSnapshot(ctx)
		if err != nil {
			t.Fatalf("LoadSnapshot() error: %v", err)
		}
		if len(loaded.Guesses) != 1 || loaded.Guesses[0].CardID != "tank" {
			t.Errorf("loaded = %+v", loaded)
		}
	})

	t.Run("wrong passphrase fails", func(t *testing.T) {
		wrong := NewService(db, &EncryptionConfig{Password: "nope", Argon2Time: 1, Argon2Memory: 64, Argon2Threads: 1})
		if _, err := wrong.LoadSnapshot(ctx); err == nil {
			t.Error("expected decryption failure with wrong passphrase")
		}
	})

	t.Run("missing passphrase fails", func(t *testing.T) {
		plain := NewService(db, nil)
		if _, err := plain.LoadSnapshot(ctx); err == nil {
			t.Error("expected error loading encrypted snapshot without passphrase")
		}
	})
}

func TestImportAudit(t *testing.T) {
	svc := NewService(testDB(t), nil)
	ctx := context.Background()

	if err := svc.RecordImport(ctx, "custom.csv", 12, 3); err != nil {
		t.Fatalf("RecordImport() error: %v", err)
	}
	if err := svc.RecordImport(ctx, "more.json", 5, 0); err != nil {
		t.Fatalf("RecordImport() error: %v", err)
	}

	records, err := svc.ListImports(ctx, 10)
	if err != nil {
		t.Fatalf("ListImports() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Newest first.
	if records[0].File != "more.json" || records[1].File != "custom.csv" {
		t.Errorf("order = [%s %s]", records[0].File, records[1].File)
	}
	if records[1].Cards != 12 || records[1].Dropped != 3 {
		t.Errorf("record = %+v", records[1])
	}
}

func TestEncryptDecryptData(t *testing.T) {
	enc := &EncryptionConfig{Password: "secret", Argon2Time: 1, Argon2Memory: 64, Argon2Threads: 1}

	plaintext := []byte("the hidden card is the siege tank")
	encrypted, err := EncryptData(plaintext, enc)
	if err != nil {
		t.Fatalf("EncryptData() error: %v", err)
	}
	if string(encrypted) == string(plaintext) {
		t.Fatal("ciphertext equals plaintext")
	}

	decrypted, err := DecryptData(encrypted, enc)
	if err != nil {
		t.Fatalf("DecryptData() error: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("round trip mismatch: %q", decrypted)
	}

	if _, err := DecryptData(encrypted[:10], enc); err == nil {
		t.Error("expected error for truncated ciphertext")
	}
}
