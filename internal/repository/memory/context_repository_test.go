package memory

import (
	"testing"

	"finaudit-be/pkg/advisor"
)

func TestContextRepositoryRoundTrip(t *testing.T) {
	repo := NewContextRepository()

	cc := &advisor.ChatContext{DatasetType: "Financial Transaction Data"}
	repo.Save("report-1", cc)

	got, found := repo.Get("report-1")
	if !found {
		t.Fatal("Get() did not find saved context")
	}
	if got != cc {
		t.Error("Get() returned a different pointer")
	}
}

func TestContextRepositoryMiss(t *testing.T) {
	repo := NewContextRepository()

	if _, found := repo.Get("nope"); found {
		t.Error("Get() found a context that was never saved")
	}
}

func TestContextRepositoryDelete(t *testing.T) {
	repo := NewContextRepository()

	repo.Save("report-1", &advisor.ChatContext{})
	repo.Delete("report-1")

	if _, found := repo.Get("report-1"); found {
		t.Error("Get() found a deleted context")
	}
}
