// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package pairstore

import (
	"compress/gzip"
	"fmt"
	"io"
)

// maxPendingWrites bounds the write batches in flight during Restore.
const maxPendingWrites = 256

// Backup writes a gzip-compressed full backup of the store to w and
// returns the Badger version it covers.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	gz := gzip.NewWriter(w)
	version, err := s.db.Backup(gz, 0)
	if err != nil {
		return 0, fmt.Errorf("backup: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("backup: flush gzip: %w", err)
	}

	s.logger.Info().Uint64("version", version).Msg("Pair store backed up")
	return version, nil
}

// Restore loads a backup written by Backup. Existing pairs are kept unless
// the backup holds a newer version of the same key; call Clear first for an
// exact copy.
func (s *Store) Restore(r io.Reader) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	defer gz.Close()

	if err := s.db.Load(gz, maxPendingWrites); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	s.logger.Info().Msg("Pair store restored")
	return nil
}
