package credentials

import (
	"os"
	"path/filepath"
	"testing"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(name string) string {
		return vars[name]
	}
}

func fakeFiles(files map[string]string) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		data, ok := files[path]
		if !ok {
			return nil, os.ErrNotExist
		}
		return []byte(data), nil
	}
}

func TestResolve(t *testing.T) {
	const (
		tokenEnv  = "TOKEN"
		tokenFile = "TOKEN_FILE"
		defPath   = "/home/op/.credentials/token"
	)

	tests := []struct {
		name  string
		env   map[string]string
		files map[string]string
		want  string
	}{
		{
			name:  "env wins over file",
			env:   map[string]string{tokenEnv: "  from-env\n"},
			files: map[string]string{defPath: "from-file"},
			want:  "from-env",
		},
		{
			name:  "blank env falls through to default file",
			env:   map[string]string{tokenEnv: "   "},
			files: map[string]string{defPath: "from-file\n"},
			want:  "from-file",
		},
		{
			name:  "path env overrides default path",
			env:   map[string]string{tokenFile: " /tmp/other "},
			files: map[string]string{defPath: "default", "/tmp/other": "other"},
			want:  "other",
		},
		{
			name:  "empty file falls through",
			files: map[string]string{defPath: "\n\t"},
			want:  "",
		},
		{
			name: "nothing configured",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolver{Getenv: fakeEnv(tt.env), ReadFile: fakeFiles(tt.files)}
			got := r.Resolve(Env(tokenEnv), File(tokenFile, defPath))
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveLiteralFallback(t *testing.T) {
	r := Resolver{Getenv: fakeEnv(map[string]string{"SECOND": "222"}), ReadFile: fakeFiles(nil)}

	if got := r.Resolve(Env("FIRST"), Env("SECOND"), Literal("333")); got != "222" {
		t.Errorf("Resolve() = %q, want %q", got, "222")
	}

	r.Getenv = fakeEnv(nil)
	if got := r.Resolve(Env("FIRST"), Env("SECOND"), Literal("333")); got != "333" {
		t.Errorf("Resolve() = %q, want %q", got, "333")
	}
}

func TestPath(t *testing.T) {
	r := Resolver{Getenv: fakeEnv(map[string]string{"SET": " /a/b "})}

	if got := r.Path("SET", "/default"); got != "/a/b" {
		t.Errorf("Path(SET) = %q, want /a/b", got)
	}
	if got := r.Path("UNSET", "/default"); got != "/default" {
		t.Errorf("Path(UNSET) = %q, want /default", got)
	}
}

func TestWriteSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "webhook")

	if err := WriteSecret(path, "first-value-that-is-longer"); err != nil {
		t.Fatalf("WriteSecret() error = %v", err)
	}
	if err := WriteSecret(path, "second"); err != nil {
		t.Fatalf("WriteSecret() overwrite error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "second" {
		t.Errorf("file contents = %q, want %q", data, "second")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %v, want 0600", perm)
	}
}

func TestZeroResolverReadsRealFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte(" disk-token \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STANTON_TEST_TOKEN_FILE", path)

	var r Resolver
	if got := r.Resolve(Env("STANTON_TEST_TOKEN_UNSET"), File("STANTON_TEST_TOKEN_FILE", "")); got != "disk-token" {
		t.Errorf("Resolve() = %q, want %q", got, "disk-token")
	}
}
