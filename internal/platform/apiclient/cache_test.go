package apiclient

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := NewCache(CacheTTLs{Patient: time.Minute})
	c.Set(CachePatient, "/patients/p1", []byte("a"))
	got, ok := c.Get(CachePatient, "/patients/p1")
	if !ok || string(got) != "a" {
		t.Fatalf("expected hit with value a, got %q ok=%v", got, ok)
	}
}

func TestCache_ZeroTTLNeverStores(t *testing.T) {
	c := NewCache(CacheTTLs{})
	c.Set(CacheNotes, "/notes", []byte("a"))
	if _, ok := c.Get(CacheNotes, "/notes"); ok {
		t.Error("zero-TTL category must not cache")
	}
}

func TestCache_LazyExpiry(t *testing.T) {
	c := NewCache(CacheTTLs{PatientList: 10 * time.Millisecond})
	c.Set(CachePatientList, "/patients", []byte("roster"))
	if _, ok := c.Get(CachePatientList, "/patients"); !ok {
		t.Fatal("expected hit before expiry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get(CachePatientList, "/patients"); ok {
		t.Error("expected miss after expiry")
	}
}

func TestCache_CategoriesAreIsolated(t *testing.T) {
	c := NewCache(CacheTTLs{Patient: time.Minute, Notes: time.Minute})
	c.Set(CachePatient, "/p", []byte("patient"))
	c.Set(CacheNotes, "/p", []byte("notes"))
	got, _ := c.Get(CacheNotes, "/p")
	if string(got) != "notes" {
		t.Errorf("categories must not collide, got %q", got)
	}
}

func TestCache_InvalidateByFragment(t *testing.T) {
	c := NewCache(CacheTTLs{Patient: time.Minute, Notes: time.Minute})
	c.Set(CachePatient, "/patients/p1", []byte("a"))
	c.Set(CacheNotes, "/patients/p1/soap", []byte("b"))
	c.Set(CachePatient, "/patients/p2", []byte("c"))

	c.Invalidate("p1")

	if _, ok := c.Get(CachePatient, "/patients/p1"); ok {
		t.Error("p1 patient entry should be invalidated")
	}
	if _, ok := c.Get(CacheNotes, "/patients/p1/soap"); ok {
		t.Error("p1 notes entry should be invalidated")
	}
	if _, ok := c.Get(CachePatient, "/patients/p2"); !ok {
		t.Error("p2 entry must survive")
	}
}
