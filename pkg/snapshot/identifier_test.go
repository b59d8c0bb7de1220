package snapshot_test

import (
	"testing"

	"github.com/jameslkingsley/overlaymap/pkg/snapshot"
)

func TestRefIdentifier(t *testing.T) {
	cases := []struct {
		name   string
		ref    snapshot.Ref
		expect string
		err    string
	}{
		{
			name:   "shared domain",
			ref:    snapshot.Ref{Domain: "feature-flags"},
			expect: "shared/feature-flags",
		},
		{
			name:   "owned domain",
			ref:    snapshot.Ref{Domain: "feature-flags", Owner: "tenant-7"},
			expect: "owner/tenant-7/feature-flags",
		},
		{
			name: "missing domain",
			ref:  snapshot.Ref{Owner: "tenant-7"},
			err:  "snapshot: domain is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ref.Identifier()

			if tc.err != "" {
				if err == nil {
					t.Fatalf("expected error %q but got nil", tc.err)
				}
				if err.Error() != tc.err {
					t.Fatalf("expected error %q, got %q", tc.err, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expect {
				t.Fatalf("expected %q, got %q", tc.expect, got)
			}
		})
	}
}
