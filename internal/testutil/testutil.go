package testutil

import (
	"testing"

	"github.com/abrezinsky/hypervision/internal/registry"
	"github.com/abrezinsky/hypervision/internal/repository"
)

// NewTestRepository creates a new in-memory journal for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// NewTestRegistry creates a registry with the default three options,
// 20 slots each.
func NewTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	return NewTestRegistryWithConfig(t, registry.DefaultConfig())
}

// NewTestRegistryWithConfig creates a registry from cfg, failing the test on error.
func NewTestRegistryWithConfig(t *testing.T, cfg registry.Config) *registry.Registry {
	t.Helper()

	reg, err := registry.New(cfg)
	if err != nil {
		t.Fatalf("failed to create test registry: %v", err)
	}
	return reg
}
