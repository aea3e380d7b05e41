package domain

import "testing"

func TestClassifyReference(t *testing.T) {
	symbols := map[string]string{
		"known-name-1": "./images/known1.png",
	}

	cases := []struct {
		raw        string
		wantKind   ReferenceKind
		wantTarget string
	}{
		{"known-name-1", ReferenceSymbolic, "./images/known1.png"},
		{"https://example.com/face.png", ReferenceRemoteURL, "https://example.com/face.png"},
		{"http://example.com/face.png", ReferenceRemoteURL, "http://example.com/face.png"},
		{"/no/such/file.png", ReferenceLocalPath, "/no/such/file.png"},
		{"relative/file.png", ReferenceLocalPath, "relative/file.png"},
	}

	for _, tc := range cases {
		ref := ClassifyReference(tc.raw, symbols)
		if ref.Kind != tc.wantKind {
			t.Errorf("ClassifyReference(%q) kind = %v, want %v", tc.raw, ref.Kind, tc.wantKind)
		}
		if ref.Target != tc.wantTarget {
			t.Errorf("ClassifyReference(%q) target = %q, want %q", tc.raw, ref.Target, tc.wantTarget)
		}
		if ref.Raw != tc.raw {
			t.Errorf("ClassifyReference(%q) raw = %q", tc.raw, ref.Raw)
		}
	}
}

func TestClassifyReferenceSymbolicWinsOverPath(t *testing.T) {
	symbols := map[string]string{"http://example.com/x": "./local.png"}
	ref := ClassifyReference("http://example.com/x", symbols)
	if ref.Kind != ReferenceSymbolic {
		t.Errorf("symbolic match should win, got kind %v", ref.Kind)
	}
}
