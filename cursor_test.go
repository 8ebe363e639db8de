package mdbxt

import (
	"fmt"
	"testing"
)

func populateSeq(t *testing.T, env *Env, table string, n int) {
	t.Helper()
	err := env.Update(func(txn *Txn) error {
		tab, err := txn.OpenTable(table, Create)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			k := []byte(fmt.Sprintf("key%03d", i))
			v := []byte(fmt.Sprintf("val%03d", i))
			if err := txn.Put(tab, k, v, 0); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("populate failed: %v", err)
	}
}

func TestCursorIteration(t *testing.T) {
	env := newTestEnv(t)
	populateSeq(t, env, "iter", 10)

	err := env.View(func(txn *Txn) error {
		tab, err := txn.OpenTable("iter", 0)
		if err != nil {
			return err
		}
		cur, err := txn.OpenCursor(tab)
		if err != nil {
			return err
		}
		defer cur.Close()

		count := 0
		prev := ""
		for k, _, err := cur.First(); ; k, _, err = cur.Next() {
			if err != nil {
				return err
			}
			if !k.Exists() {
				break
			}
			s, err := k.String()
			if err != nil {
				return err
			}
			if s <= prev {
				t.Errorf("keys out of order: %q after %q", s, prev)
			}
			prev = s
			count++
		}
		if count != 10 {
			t.Errorf("iterated %d entries, want 10", count)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestCursorBackwardIteration(t *testing.T) {
	env := newTestEnv(t)
	populateSeq(t, env, "rev", 5)

	err := env.View(func(txn *Txn) error {
		tab, err := txn.OpenTable("rev", 0)
		if err != nil {
			return err
		}
		cur, err := txn.OpenCursor(tab)
		if err != nil {
			return err
		}
		defer cur.Close()

		k, _, err := cur.Last()
		if err != nil {
			return err
		}
		s, err := k.String()
		if err != nil {
			return err
		}
		if s != "key004" {
			t.Errorf("Last = %q, want key004", s)
		}
		k, _, err = cur.Prev()
		if err != nil {
			return err
		}
		s, err = k.String()
		if err != nil {
			return err
		}
		if s != "key003" {
			t.Errorf("Prev = %q, want key003", s)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestCursorSeek(t *testing.T) {
	env := newTestEnv(t)
	populateSeq(t, env, "seek", 10)

	err := env.View(func(txn *Txn) error {
		tab, err := txn.OpenTable("seek", 0)
		if err != nil {
			return err
		}
		cur, err := txn.OpenCursor(tab)
		if err != nil {
			return err
		}
		defer cur.Close()

		// Exact seek hits.
		_, v, err := cur.Seek([]byte("key004"))
		if err != nil {
			return err
		}
		s, err := v.String()
		if err != nil {
			return err
		}
		if s != "val004" {
			t.Errorf("Seek(key004) value = %q, want val004", s)
		}

		// Exact seek misses softly.
		k, _, err := cur.Seek([]byte("key999"))
		if err != nil {
			return err
		}
		if k.Exists() {
			t.Error("Seek of absent key should not exist")
		}

		// Range seek lands on the next key in order.
		k, _, err = cur.SeekRange([]byte("key0041"))
		if err != nil {
			return err
		}
		s, err = k.String()
		if err != nil {
			return err
		}
		if s != "key005" {
			t.Errorf("SeekRange(key0041) = %q, want key005", s)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestCursorExhaustionIsSoft(t *testing.T) {
	env := newTestEnv(t)
	populateSeq(t, env, "edge", 1)

	err := env.View(func(txn *Txn) error {
		tab, err := txn.OpenTable("edge", 0)
		if err != nil {
			return err
		}
		cur, err := txn.OpenCursor(tab)
		if err != nil {
			return err
		}
		defer cur.Close()

		if _, _, err := cur.First(); err != nil {
			return err
		}
		k, _, err := cur.Next()
		if err != nil {
			t.Errorf("Next past end returned error: %v", err)
		}
		if k.Exists() {
			t.Error("Next past end should not exist")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestCursorFailsFastAfterTxnEnd(t *testing.T) {
	env := newTestEnv(t)
	populateSeq(t, env, "stale", 3)

	txn, err := env.BeginTxn(TxnReadOnly)
	if err != nil {
		t.Fatalf("BeginTxn failed: %v", err)
	}
	tab, err := txn.OpenTable("stale", 0)
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}
	cur, err := txn.OpenCursor(tab)
	if err != nil {
		t.Fatalf("OpenCursor failed: %v", err)
	}
	if _, _, err := cur.First(); err != nil {
		t.Fatalf("First failed: %v", err)
	}
	txn.Abort()

	if _, _, err := cur.Next(); !IsInvalidHandle(err) {
		t.Errorf("cursor op after txn end: got %v, want invalid handle", err)
	}
	cur.Close() // still required, and must not panic
}

func TestCursorRenew(t *testing.T) {
	env := newTestEnv(t)
	populateSeq(t, env, "renew", 3)

	txn1, err := env.BeginTxn(TxnReadOnly)
	if err != nil {
		t.Fatalf("BeginTxn failed: %v", err)
	}
	tab, err := txn1.OpenTable("renew", 0)
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}
	cur, err := txn1.OpenCursor(tab)
	if err != nil {
		t.Fatalf("OpenCursor failed: %v", err)
	}
	txn1.Abort()

	txn2, err := env.BeginTxn(TxnReadOnly)
	if err != nil {
		t.Fatalf("BeginTxn failed: %v", err)
	}
	defer txn2.Abort()

	if err := cur.Renew(txn2); err != nil {
		t.Fatalf("Renew failed: %v", err)
	}
	defer cur.Close()

	k, _, err := cur.First()
	if err != nil {
		t.Fatalf("First after Renew failed: %v", err)
	}
	if !k.Exists() {
		t.Error("renewed cursor sees no data")
	}
}

func TestCursorRenewRequiresReadOnly(t *testing.T) {
	env := newTestEnv(t)
	populateSeq(t, env, "renewrw", 1)

	txn1, err := env.BeginTxn(TxnReadOnly)
	if err != nil {
		t.Fatalf("BeginTxn failed: %v", err)
	}
	tab, err := txn1.OpenTable("renewrw", 0)
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}
	cur, err := txn1.OpenCursor(tab)
	if err != nil {
		t.Fatalf("OpenCursor failed: %v", err)
	}
	defer cur.Close()
	txn1.Abort()

	txn2 := beginWrite(t, env)
	defer txn2.Abort()
	if err := cur.Renew(txn2); err == nil {
		t.Error("Renew onto a write transaction should fail")
	}
}

func TestCursorDupSort(t *testing.T) {
	env := newTestEnv(t)

	err := env.Update(func(txn *Txn) error {
		tab, err := txn.OpenTable("dups", Create|DupSort)
		if err != nil {
			return err
		}
		for _, v := range []string{"a", "b", "c"} {
			if err := txn.Put(tab, []byte("multi"), []byte(v), 0); err != nil {
				return err
			}
		}
		if err := txn.Put(tab, []byte("single"), []byte("x"), 0); err != nil {
			return err
		}

		cur, err := txn.OpenCursor(tab)
		if err != nil {
			return err
		}
		defer cur.Close()

		if _, _, err := cur.Seek([]byte("multi")); err != nil {
			return err
		}
		n, err := cur.Count()
		if err != nil {
			return err
		}
		if n != 3 {
			t.Errorf("Count = %d, want 3", n)
		}

		// NextNoDup skips the remaining duplicates.
		k, _, err := cur.NextNoDup()
		if err != nil {
			return err
		}
		s, err := k.String()
		if err != nil {
			return err
		}
		if s != "single" {
			t.Errorf("NextNoDup = %q, want single", s)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
}

func TestCursorWrite(t *testing.T) {
	env := newTestEnv(t)

	err := env.Update(func(txn *Txn) error {
		tab, err := txn.OpenTable("cw", Create)
		if err != nil {
			return err
		}
		cur, err := txn.OpenCursor(tab)
		if err != nil {
			return err
		}
		defer cur.Close()

		if err := cur.Put([]byte("k1"), []byte("v1"), 0); err != nil {
			return err
		}
		if err := cur.Put([]byte("k2"), []byte("v2"), 0); err != nil {
			return err
		}
		if _, _, err := cur.Seek([]byte("k1")); err != nil {
			return err
		}
		if err := cur.Del(0); err != nil {
			return err
		}

		v, err := txn.Get(tab, []byte("k1"))
		if err != nil {
			return err
		}
		if v.Exists() {
			t.Error("k1 still present after cursor delete")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
}
