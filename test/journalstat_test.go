package test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/journalstat-dev/journalstat/internal/pkg/journal/journaltest"
	"github.com/journalstat-dev/journalstat/internal/pkg/logs"
	"github.com/journalstat-dev/journalstat/internal/pkg/stats"
	"github.com/journalstat-dev/journalstat/pkg/stat"
	"github.com/rs/zerolog/log"
)

func initLogger() {
	logs.InitLogger(
		logs.WithPretty(),
		logs.WithLevel(""))
}

func TestMain(m *testing.M) {
	initLogger()
	code := m.Run()
	os.Exit(code)
}

func writeJournal(t *testing.T, dir, name string, b *journaltest.Builder) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("Error writing journal file %s: %v", path, err)
	}
	return path
}

func TestAnalyzeExamples(t *testing.T) {

	var tests = map[string]struct {
		build    func(dir string, t *testing.T) string
		opts     stat.Options
		wantTop  []string
		wantBig  []string
		distinct int
	}{
		"SingleFile": {
			build: func(dir string, t *testing.T) string {
				var b journaltest.Builder
				b.AppendMessage(1000, "sshd.service", "sshd", "Connection closed")
				b.AppendMessage(1001, "cron.service", "cron", "Job started")
				b.AppendMessage(1002, "sshd.service", "sshd", "Connection closed")
				return writeJournal(t, dir, "system.journal", &b)
			},
			opts:     stat.Options{TopTalkers: 2, LargeMessages: 1},
			wantTop:  []string{"Connection closed", "Job started"},
			wantBig:  []string{"Connection closed"},
			distinct: 2,
		},
		"Directory": {
			build: func(dir string, t *testing.T) string {
				var a, b journaltest.Builder
				a.AppendMessage(1000, "sshd.service", "sshd", "repeat")
				a.AppendMessage(1001, "sshd.service", "sshd", "repeat")
				b.AppendMessage(2000, "cron.service", "cron", "repeat")
				b.AppendMessage(2001, "cron.service", "cron", "a rather longer message body")
				writeJournal(t, dir, "a.journal", &a)
				writeJournal(t, dir, "b.journal", &b)
				return dir
			},
			opts:     stat.Options{TopTalkers: 1, LargeMessages: 1},
			wantTop:  []string{"repeat"},
			wantBig:  []string{"a rather longer message body"},
			distinct: 2,
		},
		"UnitFilter": {
			build: func(dir string, t *testing.T) string {
				var b journaltest.Builder
				b.AppendMessage(1000, "sshd.service", "sshd", "keep")
				b.AppendMessage(1001, "cron.service", "cron", "drop")
				b.AppendMessage(1002, "sshd.service", "sshd", "keep")
				return writeJournal(t, dir, "system.journal", &b)
			},
			opts:     stat.Options{TopTalkers: 5, Unit: "sshd.service"},
			wantTop:  []string{"keep"},
			distinct: 1,
		},
		"PatternFilter": {
			build: func(dir string, t *testing.T) string {
				var b journaltest.Builder
				b.AppendMessage(1000, "app.service", "app", "error: disk full")
				b.AppendMessage(1001, "app.service", "app", "all good")
				b.AppendMessage(1002, "app.service", "app", "error: timeout")
				return writeJournal(t, dir, "system.journal", &b)
			},
			opts:     stat.Options{TopTalkers: 5, Pattern: `^error:`},
			wantTop:  []string{"error: disk full", "error: timeout"},
			distinct: 2,
		},
		"CompressedPayloads": {
			build: func(dir string, t *testing.T) string {
				big := make([]byte, 512)
				for i := range big {
					big[i] = 'x'
				}

				var b journaltest.Builder
				b.Append(journaltest.Entry{
					Realtime: 1000,
					Fields: []journaltest.Field{
						{Payload: append([]byte("MESSAGE="), big...), Compression: journaltest.CompressLZ4},
						journaltest.F("_SYSTEMD_UNIT", "big.service"),
					},
				})
				b.Append(journaltest.Entry{
					Realtime: 1001,
					Fields: []journaltest.Field{
						{Payload: append([]byte("MESSAGE="), big...), Compression: journaltest.CompressZSTD},
						journaltest.F("_SYSTEMD_UNIT", "big.service"),
					},
				})
				return writeJournal(t, dir, "system.journal", &b)
			},
			opts:     stat.Options{TopTalkers: 1, LargeMessages: 1},
			distinct: 1,
		},
	}

	ctx := context.Background()

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			log.Info().Str("test", name).Msg("Running test")

			dir := t.TempDir()
			test.opts.Input = test.build(dir, t)

			res, err := stat.Analyze(ctx, test.opts)
			if err != nil {
				t.Fatalf("Error analyzing journal: %v", err)
			}

			if res.Distinct != test.distinct {
				t.Errorf("Distinct = %d, want %d", res.Distinct, test.distinct)
			}

			if test.wantTop != nil {
				if len(res.TopTalkers) != len(test.wantTop) {
					t.Fatalf("TopTalkers = %+v, want %d entries", res.TopTalkers, len(test.wantTop))
				}
				for i, want := range test.wantTop {
					if res.TopTalkers[i].Key != want {
						t.Errorf("TopTalkers[%d] = %q, want %q", i, res.TopTalkers[i].Key, want)
					}
				}
			}

			for i, want := range test.wantBig {
				if string(res.LargeMessages[i].Message) != want {
					t.Errorf("LargeMessages[%d] = %q, want %q", i, res.LargeMessages[i].Message, want)
				}
			}
		})
	}
}

func TestAnalyzeSkipsCorruptFile(t *testing.T) {

	dir := t.TempDir()

	var b journaltest.Builder
	b.AppendMessage(1000, "sshd.service", "sshd", "survivor")
	writeJournal(t, dir, "good.journal", &b)

	if err := os.WriteFile(filepath.Join(dir, "bad.journal"), []byte("not a journal"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := stat.Analyze(context.Background(), stat.Options{
		Input:      dir,
		TopTalkers: 1,
	})
	if err != nil {
		t.Fatalf("Error analyzing journal: %v", err)
	}

	if res.FilesScanned != 1 || res.FilesSkipped != 1 {
		t.Errorf("scanned/skipped = %d/%d, want 1/1", res.FilesScanned, res.FilesSkipped)
	}
	if len(res.TopTalkers) != 1 || res.TopTalkers[0].Key != "survivor" {
		t.Errorf("TopTalkers = %+v, want the record from the readable file", res.TopTalkers)
	}
}

func TestAnalyzeAllFilesCorrupt(t *testing.T) {

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.journal"), []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := stat.Analyze(context.Background(), stat.Options{
		Input:      dir,
		TopTalkers: 1,
	})
	if !errors.Is(err, stats.ErrNoReadableFiles) {
		t.Errorf("err = %v, want ErrNoReadableFiles", err)
	}
}

func TestAnalyzeParallelMatchesSequential(t *testing.T) {

	dir := t.TempDir()

	for i, name := range []string{"a.journal", "b.journal", "c.journal"} {
		var b journaltest.Builder
		for j := 0; j < 20; j++ {
			b.AppendMessage(uint64(i*1000+j), "app.service", "app", "msg")
			b.AppendMessage(uint64(i*1000+j), "app.service", "app", string(rune('a'+i))+"-unique")
		}
		writeJournal(t, dir, name, &b)
	}

	seq, err := stat.Analyze(context.Background(), stat.Options{
		Input: dir, TopTalkers: 4, LargeMessages: 4,
	})
	if err != nil {
		t.Fatal(err)
	}

	par, err := stat.Analyze(context.Background(), stat.Options{
		Input: dir, TopTalkers: 4, LargeMessages: 4, Workers: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(seq.TopTalkers) != len(par.TopTalkers) {
		t.Fatalf("talkers: seq %d entries, par %d", len(seq.TopTalkers), len(par.TopTalkers))
	}
	for i := range seq.TopTalkers {
		if seq.TopTalkers[i] != par.TopTalkers[i] {
			t.Errorf("talkers[%d]: seq %+v, par %+v", i, seq.TopTalkers[i], par.TopTalkers[i])
		}
	}
	for i := range seq.LargeMessages {
		if seq.LargeMessages[i].Ord != par.LargeMessages[i].Ord {
			t.Errorf("large[%d]: seq ord %d, par ord %d", i, seq.LargeMessages[i].Ord, par.LargeMessages[i].Ord)
		}
	}
}
