// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Command arenalru-demo drives an arena-backed LRU cache from a small
// script of operations, for manual poking and for benchmarking the
// inline-vs-heap and tree-vs-hash collaborator combinations against
// each other.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/arena-lru/arenalru/internal/clilog"
	"github.com/arena-lru/arenalru/lib/arena"
	"github.com/arena-lru/arenalru/lib/dlist"
	"github.com/arena-lru/arenalru/lib/lru"
	"github.com/arena-lru/arenalru/lib/ordmap"
	"github.com/arena-lru/arenalru/lib/profile"
	"github.com/arena-lru/arenalru/lib/seq"
)

func newCache(mapKind, seqKind string, capacity int) (*lru.Cache[string, string], error) {
	var backing seq.Sequence[arena.Entry[dlist.Node[lru.Block[string, string]]]]
	switch seqKind {
	case "inline":
		backing = seq.NewInline[arena.Entry[dlist.Node[lru.Block[string, string]]]](capacity)
	case "heap":
		backing = seq.NewHeap[arena.Entry[dlist.Node[lru.Block[string, string]]]](capacity)
	default:
		return nil, fmt.Errorf("unknown --seq %q (want inline or heap)", seqKind)
	}

	var keys lru.KeyMap[string, arena.Handle]
	switch mapKind {
	case "tree":
		keys = ordmap.NewNaturalTreeMap[string, arena.Handle]()
	case "hash":
		keys = ordmap.NewHashMap[string, arena.Handle]()
	default:
		return nil, fmt.Errorf("unknown --map %q (want tree or hash)", mapKind)
	}

	return lru.NewCache[string, string](backing, keys)
}

func main() {
	var capacity int
	var mapKind, seqKind string
	logLevel := clilog.NewLevelFlag()

	root := &cobra.Command{
		Use:   "arenalru-demo {[flags]|SUBCOMMAND}",
		Short: "Exercise an arena-backed LRU cache from a script of operations",

		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().IntVar(&capacity, "capacity", 3, "cache capacity")
	root.PersistentFlags().StringVar(&mapKind, "map", "tree", "key index: tree or hash")
	root.PersistentFlags().StringVar(&seqKind, "seq", "inline", "backing sequence: inline or heap")
	root.PersistentFlags().Var(logLevel, "log-level", "error, warn, info, debug, or trace")
	stopProfiling := profile.AddProfileFlags(root.PersistentFlags(), "")

	var dump bool
	runCmd := &cobra.Command{
		Use:   "run [script-file]",
		Short: "Run a script of insert/query/remove/shrink/reserve operations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := clilog.WithLogger(context.Background(), logLevel.Level)

			in := os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			cache, err := newCache(mapKind, seqKind, capacity)
			if err != nil {
				return err
			}
			if err := runScript(ctx, cache, in); err != nil {
				return err
			}
			if dump {
				dumpCache(cache)
			}
			return nil
		},
	}
	runCmd.Flags().BoolVar(&dump, "dump", false, "dump the final cache contents (least- to most-recently-used)")
	root.AddCommand(runCmd)

	var benchOps int
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Insert a sequence of sequential keys and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := clilog.WithLogger(context.Background(), logLevel.Level)

			cache, err := newCache(mapKind, seqKind, capacity)
			if err != nil {
				return err
			}

			start := time.Now()
			var evictions int
			for i := 0; i < benchOps; i++ {
				key := strconv.Itoa(i)
				ev, err := cache.Insert(key, key)
				if err != nil {
					return err
				}
				if ev.Kind == lru.EvictionBlock {
					evictions++
				}
			}
			elapsed := time.Since(start)

			dlog.Infof(ctx, "inserted %d keys into a capacity-%d %s/%s cache in %s (%d evictions)",
				benchOps, capacity, mapKind, seqKind, elapsed, evictions)
			fmt.Fprintf(cmd.OutOrStdout(), "ops=%d capacity=%d map=%s seq=%s elapsed=%s evictions=%d\n",
				benchOps, capacity, mapKind, seqKind, elapsed, evictions)
			return nil
		},
	}
	benchCmd.Flags().IntVar(&benchOps, "ops", 10000, "number of sequential inserts to perform")
	root.AddCommand(benchCmd)

	err := root.ExecuteContext(context.Background())
	if stopErr := stopProfiling(); stopErr != nil && err == nil {
		err = stopErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: error: %v\n", root.CommandPath(), err)
		os.Exit(1)
	}
}

// runScript reads one operation per line:
//
//	insert KEY VALUE
//	query KEY
//	remove KEY
//	shrink N
//	reserve N
//	clear
//
// Blank lines and lines starting with '#' are ignored.
func runScript(ctx context.Context, cache *lru.Cache[string, string], r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "insert":
			if len(fields) != 3 {
				return fmt.Errorf("insert: want KEY VALUE, got %q", line)
			}
			ev, err := cache.Insert(fields[1], fields[2])
			if err != nil {
				return err
			}
			switch ev.Kind {
			case lru.EvictionValue:
				dlog.Infof(ctx, "insert %s=%s: replaced %s", fields[1], fields[2], ev.Value)
			case lru.EvictionBlock:
				dlog.Infof(ctx, "insert %s=%s: evicted %s=%s", fields[1], fields[2], ev.Key, ev.Value)
			default:
				dlog.Infof(ctx, "insert %s=%s", fields[1], fields[2])
			}
		case "query":
			if len(fields) != 2 {
				return fmt.Errorf("query: want KEY, got %q", line)
			}
			lookup, err := cache.Query(fields[1])
			if err != nil {
				return err
			}
			if lookup.Hit {
				dlog.Infof(ctx, "query %s: hit %s", fields[1], lookup.Value)
			} else {
				dlog.Infof(ctx, "query %s: miss", fields[1])
			}
		case "remove":
			if len(fields) != 2 {
				return fmt.Errorf("remove: want KEY, got %q", line)
			}
			lookup, err := cache.Remove(fields[1])
			if err != nil {
				return err
			}
			dlog.Infof(ctx, "remove %s: hit=%v value=%s", fields[1], lookup.Hit, lookup.Value)
		case "shrink":
			if len(fields) != 2 {
				return fmt.Errorf("shrink: want N, got %q", line)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return err
			}
			if err := cache.Shrink(n); err != nil {
				return err
			}
			dlog.Infof(ctx, "shrink %d: capacity now %d", n, cache.Capacity())
		case "reserve":
			if len(fields) != 2 {
				return fmt.Errorf("reserve: want N, got %q", line)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return err
			}
			if err := cache.Reserve(n); err != nil {
				return err
			}
			dlog.Infof(ctx, "reserve %d: capacity now %d", n, cache.Capacity())
		case "clear":
			if err := cache.Clear(); err != nil {
				return err
			}
			dlog.Infof(ctx, "clear")
		default:
			return fmt.Errorf("unknown operation %q", fields[0])
		}
	}
	return scanner.Err()
}

func dumpCache(cache *lru.Cache[string, string]) {
	type entry struct{ Key, Value string }
	var entries []entry
	cache.All(func(key, value string) bool {
		entries = append(entries, entry{key, value})
		return true
	})
	spew.Dump(entries)
}
