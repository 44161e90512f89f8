package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/frate/internal/logger"
	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/fsutil"
	"github.com/glorpus-work/frate/pkg/lock"
	"github.com/glorpus-work/frate/pkg/manifest"
	"github.com/glorpus-work/frate/pkg/platform"
	"github.com/glorpus-work/frate/test/testutil"
)

type env struct {
	server     *testutil.RegistryServer
	projectDir string
	configPath string
	cacheDir   string
}

// newEnv isolates the user directories, writes a config pointing at a fake
// registry and returns an empty project directory.
func newEnv(t *testing.T) *env {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("posix shims require symlinks")
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))

	logger.SetTestOutput(io.Discard)
	t.Cleanup(logger.UnsetTestOutput)

	e := &env{
		server:     testutil.NewRegistryServer(t),
		projectDir: t.TempDir(),
		configPath: filepath.Join(home, "frate.yaml"),
		cacheDir:   filepath.Join(home, "archives"),
	}
	cfg := "registry:\n  url: " + e.server.URLTemplate() + "\nsettings:\n  cache_dir: " + e.cacheDir + "\n  http_timeout: 10s\n"
	require.NoError(t, os.WriteFile(e.configPath, []byte(cfg), 0o644))
	return e
}

func newTestRoot() *cobra.Command {
	var (
		configPath string
		verbose    bool
		projectDir string
	)
	cmd := &cobra.Command{Use: "frate", SilenceUsage: true, SilenceErrors: true}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "")
	cmd.PersistentFlags().StringVarP(&projectDir, "project", "C", "", "")
	ConfigPath = &configPath
	Verbose = &verbose
	ProjectDir = &projectDir

	cmd.AddCommand(
		NewInitCmd(), NewAddCmd(), NewRemoveCmd(), NewSyncCmd(),
		NewInstallCmd(), NewUninstallCmd(), NewListCmd(), NewWhichCmd(),
		NewRunCmd(), NewSearchCmd(), NewConfigCmd(), NewCacheCmd(), NewVersionCmd(),
	)
	return cmd
}

// run executes the CLI against the env's config and project.
func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newTestRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.configPath, "--project", e.projectDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, out)
	return out
}

// publish serves a tarball release of tool for the host triple.
func (e *env) publish(t *testing.T, tool, version string) {
	t.Helper()
	data := testutil.TarGz(t, map[string]testutil.Entry{
		tool + "-" + version + "/" + tool: testutil.Exec("#!/bin/sh\necho " + tool + " " + version + " \"$@\"\n"),
		tool + "-" + version + "/README":  testutil.File("readme"),
	})
	e.server.AddTool(tool, testutil.Release{
		Key:      version + "-" + platform.HostTriple(),
		FileName: tool + "-" + version + ".tar.gz",
		Data:     data,
	})
}

func (e *env) project() fsutil.Project {
	return fsutil.NewProject(e.projectDir)
}

func TestInit(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun(t, "init", "--name", "demo")
	assert.Contains(t, out, "frate.toml")

	m, err := manifest.Load(e.project().ManifestPath())
	require.NoError(t, err)
	assert.Equal(t, "demo", m.Project.Name)
	assert.Empty(t, m.Dependencies)
	assert.DirExists(t, e.project().BinDir())
	assert.DirExists(t, e.project().ShimsDir())

	_, err = e.run(t, "init")
	assert.ErrorIs(t, err, pkgerrors.ErrManifestExists)

	e.mustRun(t, "init", "--force")
	m, err = manifest.Load(e.project().ManifestPath())
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(e.projectDir), m.Project.Name)
}

func TestInitWithHooks(t *testing.T) {
	e := newEnv(t)

	e.mustRun(t, "init", "--with-hooks")

	m, err := manifest.Load(e.project().ManifestPath())
	require.NoError(t, err)
	require.NotNil(t, m.Hooks)
	assert.Equal(t, "hooks/post-install.tengo", m.Hooks.PostInstall)
	assert.Equal(t, "hooks/post-uninstall.tengo", m.Hooks.PostUninstall)
	assert.FileExists(t, filepath.Join(e.projectDir, "hooks", "post-install.tengo"))
	assert.FileExists(t, filepath.Join(e.projectDir, "hooks", "post-uninstall.tengo"))

	// the templates must load and run through a full install cycle
	e.publish(t, "just", "1.0.0")
	e.mustRun(t, "add", "just@1.0.0")
	e.mustRun(t, "install")
	e.mustRun(t, "uninstall")
}

func TestCommandsOutsideProject(t *testing.T) {
	e := newEnv(t)

	for _, args := range [][]string{{"sync"}, {"install"}, {"list"}, {"add", "just@1.0.0"}} {
		_, err := e.run(t, args...)
		assert.ErrorIs(t, err, pkgerrors.ErrManifestNotFound, args)
	}
}

func TestProjectDiscoveryFromSubdirectory(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")
	e.publish(t, "just", "1.0.0")

	sub := filepath.Join(e.projectDir, "src", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	root := e.projectDir
	e.projectDir = sub
	e.mustRun(t, "add", "just@1.0.0")

	m, err := manifest.Load(filepath.Join(root, "frate.toml"))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", m.Dependencies["just"])
	assert.NoFileExists(t, filepath.Join(sub, "frate.toml"))
}

func TestAddInstallWhichRunRemove(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")
	e.publish(t, "just", "1.0.0")

	out := e.mustRun(t, "add", "just@1.0.0")
	assert.Contains(t, out, "Locked 1 of 1 dependencies")

	lf, err := lock.Load(e.project().LockPath())
	require.NoError(t, err)
	pkg, ok := lf.Find("just")
	require.True(t, ok)
	assert.Equal(t, "1.0.0", pkg.Version)
	assert.Equal(t, e.server.DownloadURL("just", "just-1.0.0.tar.gz"), pkg.Source)
	assert.True(t, strings.HasPrefix(pkg.Hash, "sha256:"))

	out = e.mustRun(t, "install")
	assert.Contains(t, out, "done: just")
	assert.FileExists(t, filepath.Join(e.project().ShimsDir(), "just"))

	out = e.mustRun(t, "which", "just")
	assert.Contains(t, out, "Found executable at: "+filepath.Join(e.project().ToolDir("just"), "just-1.0.0", "just"))
	assert.Contains(t, out, "Found shim at: "+filepath.Join(e.project().ShimsDir(), "just"))

	out = e.mustRun(t, "list")
	assert.Contains(t, out, "just")
	assert.Contains(t, out, "yes")

	out = e.mustRun(t, "run", "just", "--list", "x")
	assert.Equal(t, "just 1.0.0 --list x\n", out)

	e.mustRun(t, "remove", "just")
	assert.NoDirExists(t, e.project().ToolDir("just"))
	assert.NoFileExists(t, filepath.Join(e.project().ShimsDir(), "just"))

	lf, err = lock.Load(e.project().LockPath())
	require.NoError(t, err)
	assert.Empty(t, lf.Packages)

	out = e.mustRun(t, "which", "just")
	assert.Contains(t, out, "No installed paths found")

	_, err = e.run(t, "run", "just")
	assert.ErrorIs(t, err, pkgerrors.ErrNotInstalled)
}

func TestInstallUsesCache(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")
	e.publish(t, "just", "1.0.0")
	e.mustRun(t, "add", "just@1.0.0")

	e.mustRun(t, "install")
	e.mustRun(t, "uninstall", "--name", "just")
	assert.NoDirExists(t, e.project().ToolDir("just"))
	e.mustRun(t, "install", "--name", "just")

	assert.Equal(t, 1, e.server.Downloads("just", "just-1.0.0.tar.gz"))
	assert.FileExists(t, filepath.Join(e.cacheDir, "just-1.0.0.tar.gz"))
}

func TestInstallWithoutLockfile(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")

	_, err := e.run(t, "install")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frate sync")
}

func TestInstallUnlockedName(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")
	e.mustRun(t, "sync")

	_, err := e.run(t, "install", "--name", "ghost")
	assert.ErrorIs(t, err, pkgerrors.ErrDependencyNotLocked)
}

func TestSyncReportsUnresolvable(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")
	e.publish(t, "just", "1.0.0")

	e.mustRun(t, "add", "just@1.0.0")
	out := e.mustRun(t, "add", "ghost@2.0.0")
	assert.Contains(t, out, "failed: ghost@2.0.0")
	assert.Contains(t, out, "Locked 1 of 2 dependencies")

	m, err := manifest.Load(e.project().ManifestPath())
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost", "just"}, m.Names())

	lf, err := lock.Load(e.project().LockPath())
	require.NoError(t, err)
	assert.Equal(t, []string{"just"}, lf.Names())
}

func TestAddRejectsInvalidVersion(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")

	for _, arg := range []string{"just", "just@^1.0.0", "just@v1.0.0", "just@1.0"} {
		_, err := e.run(t, "add", arg)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidVersion, arg)
	}

	m, err := manifest.Load(e.project().ManifestPath())
	require.NoError(t, err)
	assert.Empty(t, m.Dependencies)
}

func TestRejectsPathLikeToolNames(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")

	_, err := e.run(t, "add", "../../src@1.0.0")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidToolName)

	for _, name := range []string{"..", "../.."} {
		_, err := e.run(t, "uninstall", "--name", name)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidToolName, name)
	}

	m, err := manifest.Load(e.project().ManifestPath())
	require.NoError(t, err)
	assert.Empty(t, m.Dependencies)
}

func TestRemoveUnknownDependency(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")

	_, err := e.run(t, "remove", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a dependency")
}

func TestListVerboseAndEmpty(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")

	assert.Contains(t, e.mustRun(t, "list"), "No dependencies")

	e.publish(t, "just", "1.0.0")
	e.mustRun(t, "add", "just@1.0.0")

	out := e.mustRun(t, "list")
	assert.Contains(t, out, "just")
	assert.NotContains(t, out, "sha256:")

	out = e.mustRun(t, "list", "--verbose")
	assert.Contains(t, out, "hash:    sha256:")
	assert.Contains(t, out, "source:  "+e.server.DownloadURL("just", "just-1.0.0.tar.gz"))
}

func TestSearch(t *testing.T) {
	e := newEnv(t)
	e.publish(t, "just", "1.10.0")
	e.publish(t, "just", "1.2.0")
	e.server.AddTool("just", testutil.Release{Key: "1.2.0-other-arch-none", FileName: "other.tar.gz", Data: []byte("x")})

	out := e.mustRun(t, "search", "just")
	assert.Less(t, strings.Index(out, "1.2.0"), strings.Index(out, "1.10.0"))
	assert.NotContains(t, out, "other-arch-none")

	out = e.mustRun(t, "search", "just", "--all")
	assert.Contains(t, out, "other-arch-none")
	assert.Contains(t, out, "1.2.0 *")

	_, err := e.run(t, "search", "ghost")
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestCacheCommands(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")
	e.publish(t, "just", "1.0.0")
	e.mustRun(t, "add", "just@1.0.0")
	e.mustRun(t, "install")

	assert.Equal(t, e.cacheDir+"\n", e.mustRun(t, "cache", "dir"))
	assert.Contains(t, e.mustRun(t, "cache", "list"), "just-1.0.0.tar.gz")
	assert.Contains(t, e.mustRun(t, "cache", "info"), "Archives: 1")

	assert.Contains(t, e.mustRun(t, "cache", "evict", "just"), "Evicted 1 archive(s)")
	assert.NoFileExists(t, filepath.Join(e.cacheDir, "just-1.0.0.tar.gz"))

	e.mustRun(t, "install")
	assert.Contains(t, e.mustRun(t, "cache", "clean"), "Freed")
	assert.Contains(t, e.mustRun(t, "cache", "info"), "Archives: 0")
}

func TestConfigCommands(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "config", "init")
	assert.ErrorIs(t, err, pkgerrors.ErrConfigFileExists)

	e.mustRun(t, "config", "set", "user_agent", "frate-test/1.0")
	assert.Equal(t, "frate-test/1.0\n", e.mustRun(t, "config", "get", "user_agent"))
	assert.Equal(t, e.server.URLTemplate()+"\n", e.mustRun(t, "config", "get", "registry_url"))

	assert.Equal(t, e.configPath+"\n", e.mustRun(t, "config", "path"))

	out := e.mustRun(t, "config", "show")
	assert.Contains(t, out, "Config file: "+e.configPath)
	assert.Contains(t, out, "SETTING")
	assert.Contains(t, out, "frate-test/1.0")
	assert.Less(t, strings.Index(out, "cache_dir"), strings.Index(out, "user_agent"))

	_, err = e.run(t, "config", "get", "nope")
	assert.Error(t, err)
	_, err = e.run(t, "config", "set", "log_level", "loud")
	assert.ErrorIs(t, err, pkgerrors.ErrConfigValidation)

	e.mustRun(t, "config", "init", "--force")
	assert.Equal(t, "info\n", e.mustRun(t, "config", "get", "log_level"))
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	assert.Contains(t, e.mustRun(t, "version"), "frate version "+Version)
}
