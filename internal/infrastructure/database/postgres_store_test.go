package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	if _, err := RunMigrations("postgres", dsn); err != nil {
		t.Fatal(err)
	}
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()
	s := NewPostgresStore(pool)
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}

	prefix := fmt.Sprintf("test%d:", time.Now().UnixNano())
	name := prefix + "1"
	t.Cleanup(func() { _ = s.Delete(context.Background(), name) })

	if err := s.Save(ctx, name, []byte(`{"a": 1}`)); err != nil {
		t.Fatal(err)
	}
	body, found, err := s.Load(ctx, name)
	if err != nil || !found || len(body) == 0 {
		t.Fatalf("Load = %s, %v, %v", body, found, err)
	}
	docs, err := s.List(ctx, prefix)
	if err != nil || len(docs) != 1 {
		t.Fatalf("List = %v, %v", docs, err)
	}

	first, err := s.NextID(ctx, prefix)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := s.NextID(ctx, prefix)
	if first != 1 || second != 2 {
		t.Fatalf("NextID = %d then %d", first, second)
	}
}
