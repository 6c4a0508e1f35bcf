// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var restoreReplace bool

var backupCmd = &cobra.Command{
	Use:   "backup FILE",
	Short: "Write a compressed backup of the pair store",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Load a pair store backup",
	Long: `Load a backup written by 'simrec backup'. Stored pairs are merged with the
backup unless --replace is set, which clears the store first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreReplace, "replace", false, "clear the pair store before loading")
	rootCmd.AddCommand(backupCmd, restoreCmd)
}

func runBackup(cmd *cobra.Command, args []string) (err error) {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer closeLogged("pair store", store)

	f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	version, err := store.Backup(f)
	if err != nil {
		return err
	}
	printOK(cmd.OutOrStdout(), fmt.Sprintf("backup written to %s (version %d)", args[0], version))
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer closeLogged("pair store", store)

	if restoreReplace {
		if _, err := store.Clear(false); err != nil {
			return err
		}
	}
	if err := store.Restore(f); err != nil {
		return err
	}

	n, err := store.Count()
	if err != nil {
		return err
	}
	printOK(cmd.OutOrStdout(), fmt.Sprintf("%s pairs stored after restore", formatCount(int64(n))))
	return nil
}
