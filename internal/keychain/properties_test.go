package keychain_test

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/store/memory"
)

func TestRoundTrip(t *testing.T) {
	secrets := [][]byte{
		[]byte("p@ssw0rd!"),
		[]byte("密码123"),
		[]byte("line1\nline2"),
		{0x00, 0x01, 0xff},
		[]byte(fmt.Sprintf("%01000d", 7)),
	}
	kc := keychain.New(memory.New())
	for i, secret := range secrets {
		account := fmt.Sprintf("acct%d", i)
		if ok, xe := kc.WriteValue("svc", account, secret); xe != nil || !ok {
			t.Fatalf("WriteValue(%s) = %v, %v", account, ok, xe)
		}
		got, xe := kc.ReadValue("svc", account)
		if xe != nil {
			t.Fatalf("ReadValue(%s) failed: %v", account, xe)
		}
		if string(got) != string(secret) {
			t.Fatalf("ReadValue(%s) = %q, want %q", account, got, secret)
		}
	}
}

func TestWriteTwiceIsNoop(t *testing.T) {
	mem := memory.New()
	kc := keychain.New(mem)

	if !kc.SetString("svc", "acct", "value") {
		t.Fatal("first write failed")
	}
	after := mem.Mutations()
	if !kc.SetString("svc", "acct", "value") {
		t.Fatal("second write failed")
	}
	if mem.Mutations() != after {
		t.Fatalf("second identical write issued %d mutation(s)", mem.Mutations()-after)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", mem.Len())
	}
}

func TestOverwriteReplaces(t *testing.T) {
	kc := keychain.New(memory.New())
	kc.SetString("svc", "acct", "old")
	kc.SetString("svc", "acct", "new")
	if got := kc.String("svc", "acct"); got != "new" {
		t.Fatalf("String = %q, want new", got)
	}
}

func TestDeleteNeverWritten(t *testing.T) {
	kc := keychain.New(memory.New())
	ok, xe := kc.DeleteValue("svc", "ghost")
	if ok {
		t.Fatal("delete of a missing key must not succeed")
	}
	if xe == nil || xe.Code == errors.CodeDuplicateItem {
		t.Fatalf("unexpected error kind: %v", xe)
	}
	if !keychain.IsNotFound(xe) {
		t.Fatalf("expected not found, got %v", xe)
	}
	if kc.Delete("svc", "ghost") {
		t.Fatal("Delete convenience should return false")
	}
}

func TestReadAfterDeleteFails(t *testing.T) {
	kc := keychain.New(memory.New())
	kc.SetString("svc", "acct", "v")
	if ok, xe := kc.DeleteValue("svc", "acct"); !ok || xe != nil {
		t.Fatalf("DeleteValue = %v, %v", ok, xe)
	}
	if _, xe := kc.ReadValue("svc", "acct"); !keychain.IsNotFound(xe) {
		t.Fatalf("expected not found after delete, got %v", xe)
	}
}

func TestAllAccountsForService(t *testing.T) {
	kc := keychain.New(memory.New())
	kc.SetString("S", "a1", "first")
	kc.SetString("S", "a2", "second")
	kc.SetString("other", "a3", "third")

	got, xe := kc.AllAccounts("S")
	if xe != nil {
		t.Fatalf("AllAccounts failed: %v", xe)
	}
	sort.Strings(got)
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("AllAccounts(S) = %q", got)
	}

	all := kc.Accounts("")
	if len(all) != 3 {
		t.Fatalf("Accounts(\"\") = %q, want 3 values", all)
	}

	if none := kc.Accounts("missing"); len(none) != 0 {
		t.Fatalf("Accounts(missing) = %q", none)
	}
}

func TestScenario(t *testing.T) {
	kc := keychain.New(memory.New())

	if ok, xe := kc.WriteValue("app", "token", []byte("xyz")); !ok || xe != nil {
		t.Fatalf("write xyz: %v %v", ok, xe)
	}
	if got := kc.String("app", "token"); got != "xyz" {
		t.Fatalf("read = %q, want xyz", got)
	}
	if ok, xe := kc.WriteValue("app", "token", []byte("abc")); !ok || xe != nil {
		t.Fatalf("write abc: %v %v", ok, xe)
	}
	if got := kc.String("app", "token"); got != "abc" {
		t.Fatalf("read = %q, want abc", got)
	}
	if !kc.Delete("app", "token") {
		t.Fatal("delete failed")
	}
	if _, ok := kc.Bytes("app", "token"); ok {
		t.Fatal("read after delete should fail")
	}
	if got := kc.String("app", "token"); got != "" {
		t.Fatalf("String after delete = %q", got)
	}
}

func TestConcurrentWritersSameKey(t *testing.T) {
	mem := memory.New()
	kc := keychain.New(mem)

	var wg sync.WaitGroup
	errs := make(chan *errors.XError, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, xe := kc.WriteValue("svc", "acct", []byte(fmt.Sprintf("v%d", i%4))); xe != nil {
				errs <- xe
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for xe := range errs {
		t.Errorf("concurrent write failed: %v", xe)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected a single entry, got %d", mem.Len())
	}
}
