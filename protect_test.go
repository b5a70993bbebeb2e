package vmem

import "testing"

func TestProtect(t *testing.T) {
	size := PageSize()

	t.Run("SplitsAllocation", func(t *testing.T) {
		a, err := Alloc(3*size, ProtReadWrite)
		if err != nil {
			t.Fatal(err)
		}
		defer a.Free()

		if err := Protect(a.Base(), size, ProtRead); err != nil {
			t.Fatal(err)
		}
		head, err := Query(a.Base())
		if err != nil {
			t.Fatal(err)
		}
		if head.Protection() != ProtRead {
			t.Errorf("first page = %v, want r--", head.Protection())
		}
		tail, err := Query(a.Base() + size)
		if err != nil {
			t.Fatal(err)
		}
		if tail.Protection() != ProtReadWrite {
			t.Errorf("second page = %v, want rw-", tail.Protection())
		}
	})

	t.Run("Unaligned", func(t *testing.T) {
		a, err := Alloc(2*size, ProtReadWrite)
		if err != nil {
			t.Fatal(err)
		}
		defer a.Free()

		// Addresses normalize to page boundaries, so protecting one
		// byte in the middle of a page covers that whole page.
		if err := Protect(a.Base()+size/2, 1, ProtRead); err != nil {
			t.Fatal(err)
		}
		r, err := Query(a.Base())
		if err != nil {
			t.Fatal(err)
		}
		if r.Protection() != ProtRead {
			t.Errorf("page = %v, want r--", r.Protection())
		}
	})

	t.Run("ZeroLength", func(t *testing.T) {
		if err := Protect(0x1000, 0, ProtRead); !IsKind(err, ErrInvalidParameter) {
			t.Fatalf("Protect(_, 0, _) = %v, want invalid parameter", err)
		}
	})

	t.Run("Unmapped", func(t *testing.T) {
		a, err := Alloc(size, ProtReadWrite)
		if err != nil {
			t.Fatal(err)
		}
		base := a.Base()
		a.Free()
		if err := Protect(base, size, ProtRead); !IsKind(err, ErrUnmappedRegion) {
			t.Fatalf("Protect over freed pages = %v, want unmapped region", err)
		}
	})
}

func TestProtectWithGuard(t *testing.T) {
	size := PageSize()

	setup := func(t *testing.T) *Allocation {
		t.Helper()
		a, err := Alloc(3*size, ProtReadWrite)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(a.Free)
		// Heterogeneous prior state: r-- / rw- / r-x.
		if err := Protect(a.Base(), size, ProtRead); err != nil {
			t.Fatal(err)
		}
		if err := Protect(a.Base()+2*size, size, ProtReadExec); err != nil {
			t.Fatal(err)
		}
		return a
	}

	pageProt := func(t *testing.T, addr uintptr) Protection {
		t.Helper()
		r, err := Query(addr)
		if err != nil {
			t.Fatal(err)
		}
		return r.Protection()
	}

	t.Run("RestoresHeterogeneousMap", func(t *testing.T) {
		a := setup(t)

		g, err := ProtectWithGuard(a.Base(), 3*size, ProtReadWriteExec)
		if err != nil {
			t.Fatal(err)
		}
		for i := uintptr(0); i < 3; i++ {
			if p := pageProt(t, a.Base()+i*size); p != ProtReadWriteExec {
				t.Fatalf("page %d under guard = %v, want rwx", i, p)
			}
		}
		g.Release()

		want := []Protection{ProtRead, ProtReadWrite, ProtReadExec}
		for i, w := range want {
			if p := pageProt(t, a.Base()+uintptr(i)*size); p != w {
				t.Errorf("page %d restored to %v, want %v", i, p, w)
			}
		}
	})

	t.Run("GuardRange", func(t *testing.T) {
		a := setup(t)
		g, err := ProtectWithGuard(a.Base()+1, size-1, ProtReadWrite)
		if err != nil {
			t.Fatal(err)
		}
		defer g.Release()
		if g.Base() != a.Base() || g.Len() != size {
			t.Errorf("guard range [%#x, +%#x), want [%#x, +%#x)",
				g.Base(), g.Len(), a.Base(), size)
		}
	})

	t.Run("ReleaseIdempotent", func(t *testing.T) {
		a := setup(t)
		g, err := ProtectWithGuard(a.Base(), 3*size, ProtReadWrite)
		if err != nil {
			t.Fatal(err)
		}
		g.Release()
		g.Release()
		if p := pageProt(t, a.Base()); p != ProtRead {
			t.Errorf("first page = %v after double release, want r--", p)
		}
	})

	t.Run("UnmappedRange", func(t *testing.T) {
		a, err := Alloc(size, ProtReadWrite)
		if err != nil {
			t.Fatal(err)
		}
		base := a.Base()
		a.Free()
		if _, err := ProtectWithGuard(base, size, ProtRead); !IsKind(err, ErrUnmappedRegion) {
			t.Fatalf("guard over freed pages = %v, want unmapped region", err)
		}
	})
}
