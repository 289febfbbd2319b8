package idgen

import (
	"strings"
	"sync"
	"testing"
)

func TestNewRejectsOutOfRangeWorker(t *testing.T) {
	if _, err := New(-1); err == nil {
		t.Fatal("want error for negative worker id")
	}
	if _, err := New(maxWorkerID + 1); err == nil {
		t.Fatal("want error for worker id above max")
	}
}

func TestGenerateUniqueUnderConcurrency(t *testing.T) {
	g, err := New(3)
	if err != nil {
		t.Fatal(err)
	}

	const workers, perWorker = 8, 500
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := g.Generate()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("unique ids=%d want=%d", len(seen), workers*perWorker)
	}
}

func TestGenerateTransactionNoFormat(t *testing.T) {
	no := GenerateTransactionNo()
	if !strings.HasPrefix(no, "TXN") || len(no) != 3+14+8 {
		t.Fatalf("unexpected transaction no %q", no)
	}
}

func TestGenerateAccountNumberFormat(t *testing.T) {
	no := GenerateAccountNumber("CTE")
	if !strings.HasPrefix(no, "CTE") || len(no) != 12 {
		t.Fatalf("unexpected account number %q", no)
	}
}
