package store

import (
	"errors"
	"fmt"
	"os"

	"docqa/config"
	"docqa/internal/adapter/index"
	"docqa/internal/domain"
)

// LoadSnapshot reads the index saved at path if it was built with settings
// compatible with cfg. A missing file is reported without creating one.
// Every "nothing usable" outcome wraps domain.ErrNotIngested.
func LoadSnapshot(path string, cfg *config.Config) (*index.FlatIndex, Meta, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, Meta{}, fmt.Errorf("%w: no index found at %s", domain.ErrNotIngested, path)
	} else if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to open index: %w", err)
	}

	st, err := NewBoltStore(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	compat, err := st.CheckCompatible(cfg)
	if err != nil {
		return nil, Meta{}, err
	}
	if compat.NeedsRebuild {
		return nil, Meta{}, fmt.Errorf("%w: saved index at %s is stale (%s)", domain.ErrNotIngested, path, compat.Reason)
	}

	idx, meta, err := st.Load()
	if errors.Is(err, ErrNoSnapshot) {
		return nil, Meta{}, fmt.Errorf("%w: index at %s is empty", domain.ErrNotIngested, path)
	}
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to load index: %w", err)
	}
	return idx, meta, nil
}
