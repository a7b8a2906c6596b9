package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKeyDeterministicAndVersionSensitive(t *testing.T) {
	k1 := Key("v1", "export class A {}")
	k2 := Key("v1", "export class A {}")
	if k1 != k2 {
		t.Errorf("Key not deterministic: %s != %s", k1, k2)
	}
	if k3 := Key("v2", "export class A {}"); k3 == k1 {
		t.Error("Key did not change with version tag")
	}
	if k4 := Key("v1", "export class B {}"); k4 == k1 {
		t.Error("Key did not change with source text")
	}
}

func TestGetMissOnEmptyCache(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.Get(Key("v1", "x"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("Get() on empty cache = hit, want miss")
	}
}

func TestPutThenGetRoundTrips(t *testing.T) {
	c := openTestCache(t)
	key := Key("v1", "export class A {}")
	want := Entry{
		SourceHash: key,
		Yul:        `object "A" { code { } }`,
		ABIJSON:    `[]`,
		Bytecode:   "0x6001",
		CreatedAt:  time.Unix(1700000000, 0).UTC(),
	}
	if err := c.Put(want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get() after Put = miss, want hit")
	}
	if got.Yul != want.Yul || got.ABIJSON != want.ABIJSON || got.Bytecode != want.Bytecode {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestPutUpsertsOnConflict(t *testing.T) {
	c := openTestCache(t)
	key := Key("v1", "export class A {}")
	first := Entry{SourceHash: key, Yul: "first", ABIJSON: "[]", Bytecode: "0x00", CreatedAt: time.Unix(1, 0).UTC()}
	second := Entry{SourceHash: key, Yul: "second", ABIJSON: "[]", Bytecode: "0x01", CreatedAt: time.Unix(2, 0).UTC()}
	if err := c.Put(first); err != nil {
		t.Fatalf("Put(first): %v", err)
	}
	if err := c.Put(second); err != nil {
		t.Fatalf("Put(second): %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Yul != "second" || got.Bytecode != "0x01" {
		t.Errorf("Get() after upsert = %+v, want second/0x01", got)
	}
}
