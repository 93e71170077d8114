package history

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	bolt "go.etcd.io/bbolt"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return s, path
}

func TestAddRecent(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	for i, line := range []string{"1 + 2", "x * 3", ":set x 4"} {
		seq, err := s.Add(line)
		if err != nil {
			t.Fatal(err)
		}
		if seq != i+1 {
			t.Errorf("%q: want sequence %d, got %d", line, i+1, seq)
		}
	}
	cases := []struct {
		n    int
		want []Entry
	}{
		{0, []Entry{{1, "1 + 2"}, {2, "x * 3"}, {3, ":set x 4"}}},
		{2, []Entry{{2, "x * 3"}, {3, ":set x 4"}}},
		{10, []Entry{{1, "1 + 2"}, {2, "x * 3"}, {3, ":set x 4"}}},
	}
	for _, c := range cases {
		got, err := s.Recent(c.n)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("Recent(%d) (-want +got):\n%s", c.n, diff)
		}
	}
	if text, err := s.Get(2); err != nil || text != "x * 3" {
		t.Errorf("Get(2): want %q, got %q, %v", "x * 3", text, err)
	}
	if _, err := s.Get(4); !errors.Is(err, ErrNoMatchingCmd) {
		t.Errorf("Get(4): want ErrNoMatchingCmd, got %v", err)
	}
}

func TestReopen(t *testing.T) {
	s, path := openTemp(t)
	if _, err := s.Add("sq 3"); err != nil {
		t.Fatal(err)
	}
	defs := []Def{
		{Name: "sq", Format: "infix", Src: "sq/1=$1 * $1"},
		{Name: "sq", Format: "postfix", Src: "sq/1=$1 2 ^"},
		{Name: "avg2", Format: "infix", Src: "avg2/2=($1 + $2) / 2"},
	}
	for _, d := range defs {
		if err := s.Define(d); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Entry{{1, "sq 3"}}, got); diff != "" {
		t.Errorf("history after reopen (-want +got):\n%s", diff)
	}
	var saved []Def
	err = s.Defs(func(d Def) error {
		saved = append(saved, d)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []Def{
		{Name: "avg2", Format: "infix", Src: "avg2/2=($1 + $2) / 2"},
		{Name: "sq", Format: "postfix", Src: "sq/1=$1 2 ^"},
	}
	if diff := cmp.Diff(want, saved); diff != "" {
		t.Errorf("definitions after reopen (-want +got):\n%s", diff)
	}
}

func TestDefsWithoutFormat(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketDef)).Put([]byte("sq"), []byte("sq/1=$1 * $1"))
	})
	if err != nil {
		t.Fatal(err)
	}
	var got []Def
	err = s.Defs(func(d Def) error {
		got = append(got, d)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Def{{Name: "sq", Src: "sq/1=$1 * $1"}}, got); diff != "" {
		t.Errorf("wrong definitions (-want +got):\n%s", diff)
	}
}
