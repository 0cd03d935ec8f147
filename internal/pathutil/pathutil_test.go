package pathutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"a/b/c.jpg", "a/b/c.jpg", false},
		{"a\\b\\c.jpg", "a/b/c.jpg", false},
		{"./a/./b", "a/b", false},
		{"", "", false},
		{"a/../b", "", true},
		{"../b", "", true},
		{"a//b", "a/b", false},
	}
	for _, c := range cases {
		got, err := Normalize(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Normalize(%q): expected error, got %q", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Normalize(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestJoinEscapesRoot(t *testing.T) {
	if _, err := Join("/media", "a/b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full, err := Join("/media", ""); err != nil || full != "/media" {
		t.Fatalf("Join with empty relative: got %q, %v", full, err)
	}
	if full, err := Join("/media", "../etc/passwd"); err != ErrEscapesRoot {
		t.Fatalf("Join escaping root: got %q, %v, want ErrEscapesRoot", full, err)
	}
}

func TestIsDescendant(t *testing.T) {
	if !IsDescendant("a/b", "a/b") {
		t.Error("directory should be its own descendant")
	}
	if !IsDescendant("a/b", "a/b/c") {
		t.Error("a/b/c should be a descendant of a/b")
	}
	if IsDescendant("a/b", "a/bc") {
		t.Error("a/bc should not be a descendant of a/b")
	}
	if !IsDescendant("", "file.jpg") {
		t.Error("root-level file should match empty directory")
	}
	if IsDescendant("", "dir/file.jpg") {
		t.Error("nested file should not match empty (root-only) directory")
	}
}
