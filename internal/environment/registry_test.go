// internal/environment/registry_test.go
//
// Unit-tests for registry construction and env-map merge precedence.
//
// Run: go test ./internal/environment -v

package environment

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/martinmares/simple-config-server/internal/config"
	"github.com/martinmares/simple-config-server/internal/gitrepo"
)

func writeEnvFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return p
}

func gitStub() gitrepo.GitConfig {
	return gitrepo.GitConfig{RepoURL: "file:///tmp/repo", Branch: "main", Workdir: "/tmp/wd"}
}

func TestBuildMergePrecedence(t *testing.T) {
	globalFile := writeEnvFile(t, "global.env", "SHARED=global\nGLOBAL_ONLY=g\n")
	prodFile := writeEnvFile(t, "prod.env", "SHARED=prod\nPROD_ONLY=p\n")

	cfg := &config.Config{
		EnvFile: globalFile,
		Environments: map[string]config.EnvDefinition{
			"prod":    {Git: gitStub(), EnvFile: prodFile},
			"staging": {Git: gitStub()},
		},
	}

	reg, err := Build(cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	prod, ok := reg.Lookup("prod")
	if !ok {
		t.Fatalf("prod environment missing")
	}
	if prod.Vars["SHARED"] != "prod" {
		t.Fatalf("SHARED = %q, want per-env override", prod.Vars["SHARED"])
	}
	if prod.Vars["GLOBAL_ONLY"] != "g" || prod.Vars["PROD_ONLY"] != "p" {
		t.Fatalf("merged vars = %v", prod.Vars)
	}

	staging, _ := reg.Lookup("staging")
	if staging.Vars["SHARED"] != "global" {
		t.Fatalf("staging SHARED = %q, want global value", staging.Vars["SHARED"])
	}
	if _, leaked := staging.Vars["PROD_ONLY"]; leaked {
		t.Fatalf("per-env var leaked across tenants")
	}
}

func TestBuildProcessEnvLayer(t *testing.T) {
	t.Setenv("PROC_VAR", "from-process")
	t.Setenv("SHARED", "from-process")
	envFile := writeEnvFile(t, "g.env", "SHARED=from-file\n")

	cfg := &config.Config{
		EnvFromProcess: true,
		EnvFile:        envFile,
		Git:            func() *gitrepo.GitConfig { g := gitStub(); return &g }(),
	}

	reg, err := Build(cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	env, ok := reg.Lookup(DefaultName)
	if !ok {
		t.Fatalf("single-instance mode did not register %q", DefaultName)
	}
	if env.Vars["PROC_VAR"] != "from-process" {
		t.Fatalf("process env not inherited")
	}
	if env.Vars["SHARED"] != "from-file" {
		t.Fatalf("SHARED = %q, want env file to override process", env.Vars["SHARED"])
	}
}

func TestBuildMissingEnvFileIsNonFatal(t *testing.T) {
	cfg := &config.Config{
		EnvFile: "/nonexistent/file.env",
		Git:     func() *gitrepo.GitConfig { g := gitStub(); return &g }(),
	}
	if _, err := Build(cfg, zap.NewNop().Sugar()); err != nil {
		t.Fatalf("Build failed on missing env file: %v", err)
	}
}

func TestBuildRequiresEndpoint(t *testing.T) {
	if _, err := Build(&config.Config{}, zap.NewNop().Sugar()); err == nil {
		t.Fatalf("Build accepted a config with no git endpoint")
	}
}

func TestAllSorted(t *testing.T) {
	reg := NewRegistry(
		&Environment{Name: "staging"},
		&Environment{Name: "prod"},
		&Environment{Name: "dev"},
	)
	all := reg.All()
	if len(all) != 3 || all[0].Name != "dev" || all[1].Name != "prod" || all[2].Name != "staging" {
		t.Fatalf("All() order = %v", all)
	}
}
