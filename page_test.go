package vmem

import (
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestPageSize(t *testing.T) {
	size := PageSize()
	if size == 0 {
		t.Fatal("page size is zero")
	}
	if size&(size-1) != 0 {
		t.Fatalf("page size %d is not a power of two", size)
	}
	if again := PageSize(); again != size {
		t.Fatalf("page size changed between calls: %d then %d", size, again)
	}
}

func TestPageSizeConcurrentInit(t *testing.T) {
	// Force every goroutine down the first-caller path; all racing
	// initializers must converge on one value.
	atomic.StoreUintptr(&cachedPageSize, 0)

	const callers = 16
	results := make([]uintptr, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			results[i] = PageSize()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r != results[0] {
			t.Fatalf("caller %d observed page size %d, caller 0 observed %d", i, r, results[0])
		}
	}
}

func TestPageRounding(t *testing.T) {
	size := PageSize()

	t.Run("Ceil", func(t *testing.T) {
		cases := []struct{ in, want uintptr }{
			{0, 0},
			{1, size},
			{size - 1, size},
			{size, size},
			{size + 1, 2 * size},
			{3*size - 1, 3 * size},
		}
		for _, c := range cases {
			got, err := PageCeil(c.in)
			if err != nil {
				t.Fatalf("PageCeil(%d): %v", c.in, err)
			}
			if got != c.want {
				t.Errorf("PageCeil(%d) = %d, want %d", c.in, got, c.want)
			}
		}
	})

	t.Run("Floor", func(t *testing.T) {
		cases := []struct{ in, want uintptr }{
			{0, 0},
			{1, 0},
			{size - 1, 0},
			{size, size},
			{2*size - 1, size},
		}
		for _, c := range cases {
			if got := PageFloor(c.in); got != c.want {
				t.Errorf("PageFloor(%d) = %d, want %d", c.in, got, c.want)
			}
		}
	})

	t.Run("Identities", func(t *testing.T) {
		for _, x := range []uintptr{0, 1, size - 1, size, size + 1, 7 * size, 7*size + 3} {
			ceil, err := PageCeil(x)
			if err != nil {
				t.Fatalf("PageCeil(%d): %v", x, err)
			}
			floor := PageFloor(x)
			if floor > x || x > ceil {
				t.Errorf("ordering violated for %d: floor=%d ceil=%d", x, floor, ceil)
			}
			if floor%size != 0 || ceil%size != 0 {
				t.Errorf("results not page multiples for %d: floor=%d ceil=%d", x, floor, ceil)
			}
			if d := ceil - floor; d != 0 && d != size {
				t.Errorf("ceil-floor for %d is %d, want 0 or %d", x, d, size)
			}
		}
	})

	t.Run("CeilOverflow", func(t *testing.T) {
		if _, err := PageCeil(^uintptr(0)); !IsKind(err, ErrOverflow) {
			t.Fatalf("PageCeil(max) = %v, want overflow", err)
		}
		if _, err := PageCeil(^uintptr(0) - 1); !IsKind(err, ErrOverflow) {
			t.Fatalf("PageCeil(max-1) = %v, want overflow", err)
		}
	})
}

func TestPageRange(t *testing.T) {
	size := PageSize()

	t.Run("Normalizes", func(t *testing.T) {
		base, n, err := pageRange(size+1, 1)
		if err != nil {
			t.Fatal(err)
		}
		if base != size || n != size {
			t.Fatalf("pageRange(size+1, 1) = (%d, %d), want (%d, %d)", base, n, size, size)
		}
	})

	t.Run("SpansBoundary", func(t *testing.T) {
		base, n, err := pageRange(size-1, 2)
		if err != nil {
			t.Fatal(err)
		}
		if base != 0 || n != 2*size {
			t.Fatalf("pageRange(size-1, 2) = (%d, %d), want (0, %d)", base, n, 2*size)
		}
	})

	t.Run("ZeroLength", func(t *testing.T) {
		if _, _, err := pageRange(size, 0); !IsKind(err, ErrInvalidParameter) {
			t.Fatalf("pageRange(size, 0) = %v, want invalid parameter", err)
		}
	})

	t.Run("EndOverflow", func(t *testing.T) {
		if _, _, err := pageRange(^uintptr(0), 2); !IsKind(err, ErrOverflow) {
			t.Fatalf("wrapping range = %v, want overflow", err)
		}
	})

	t.Run("CeilOverflow", func(t *testing.T) {
		if _, _, err := pageRange(^uintptr(0)-1, 1); !IsKind(err, ErrOverflow) {
			t.Fatalf("ceil-overflowing range = %v, want overflow", err)
		}
	})
}

func BenchmarkPageCeil(b *testing.B) {
	PageSize()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = PageCeil(uintptr(i))
	}
}
