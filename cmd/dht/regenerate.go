package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"dht/internal/capability"
	"dht/internal/depinstall"
	"dht/internal/devtools"
	"dht/internal/engine"
	"dht/internal/envutil"
	"dht/internal/fingerprint"
	"dht/internal/interpreter"
	"dht/internal/introspect"
	"dht/internal/manifest"
	"dht/internal/obs"
	"dht/internal/parsers"
	"dht/internal/platform"
	"dht/internal/sandbox"
	"dht/internal/taskrunner"
)

// lockFileName and requirementsFileName are the two lockfile formats §6
// selects between, preferring the resolver-native format when present.
const (
	lockFileName         = "dht.lock"
	requirementsFileName = "requirements.txt"
	regenWallClockLimit  = 30 * time.Minute
)

// RegenerateCmd rebuilds the environment from the manifest, running the
// twelve fixed steps (§4.I) through the Task Runner so the run is durable,
// resumable, and cancellable.
type RegenerateCmd struct {
	Dir    string `arg:"" optional:"" default:"." help:"Project directory"`
	Strict bool   `help:"Never fall back on a recoverable failure"`
	DryRun bool   `help:"Print the plan without installing anything"`
}

func (c *RegenerateCmd) Run() error {
	ctx := context.Background()

	r, err := resolveRoot(ctx, c.Dir, c.Strict)
	if err != nil {
		return err
	}
	if err := r.loadManifest(); err != nil {
		return err
	}
	strict := c.Strict || r.Manifest.Strict

	release, err := ensureLock(r.Dir)
	if err != nil {
		return err
	}
	defer release()

	queue, err := taskrunner.OpenQueue(r.Dir)
	if err != nil {
		return err
	}
	defer queue.Close()

	rs := newRegenState(r, queue, strict, c.DryRun)

	runner := &taskrunner.Runner{
		Queue: queue,
		Steps: map[string]taskrunner.StepFunc{
			"regenerate": rs.runPlan,
		},
	}

	task := taskrunner.NewTask("regenerate", "", r.Dir, 1, taskrunner.ResourceLimits{
		MaxWallClock: regenWallClockLimit,
	})
	if _, err := runner.Submit(task); err != nil {
		return err
	}

	if err := runner.RunUntilIdle(ctx); err != nil {
		return err
	}
	if len(rs.report.Warnings) > 0 {
		fmt.Fprintln(os.Stderr, rs.report.String())
	}
	fmt.Fprintf(os.Stdout, "regenerated %s\n", r.Dir)
	return nil
}

// regenState holds the mutable state the twelve engine steps thread between
// each other: the re-probed platform, resolved capability mappings, the
// interpreter once resolved, and the fallback report strict mode checks
// against. One regenState backs exactly one regeneration run.
type regenState struct {
	root   *root
	queue  *taskrunner.Queue
	strict bool
	dryRun bool

	report engine.Report

	mappings map[string]*capability.PlatformMapping
	interp   *interpreter.Interpreter

	managerLocks sync.Map // manager command name -> *sync.Mutex, for serializing managers
}

func newRegenState(r *root, queue *taskrunner.Queue, strict, dryRun bool) *regenState {
	return &regenState{root: r, queue: queue, strict: strict, dryRun: dryRun}
}

// runPlan is the Task Runner step registered for the "regenerate" kind: the
// whole twelve-step pipeline, checkpointed through the same queue entry that
// holds this task, so a crash mid-run resumes at the right step rather
// than restarting from probe_platform.
func (rs *regenState) runPlan(ctx context.Context, t *taskrunner.Task) error {
	plan, err := engine.NewPlan(engine.StepKind(t.Checkpoint))
	if err != nil {
		return err
	}

	exec := &engine.Executor{
		Plan:       plan,
		Strict:     rs.strict,
		Checkpoint: &taskCheckpointer{queue: rs.queue, taskID: t.ID},
		Steps: map[engine.StepKind]engine.StepFunc{
			engine.StepProbePlatform:       rs.stepProbePlatform,
			engine.StepLoadManifest:        rs.stepLoadManifest,
			engine.StepIntrospectProject:   rs.stepIntrospectProject,
			engine.StepResolveCapabilities: rs.stepResolveCapabilities,
			engine.StepInstallCapabilities: rs.stepInstallCapabilities,
			engine.StepEnsureInterpreter:   rs.stepEnsureInterpreter,
			engine.StepCreateEnvironment:   rs.stepCreateEnvironment,
			engine.StepInstallDependencies: rs.stepInstallDependencies,
			engine.StepInstallDevTools:     rs.stepInstallDevTools,
			engine.StepInstallHooks:        rs.stepInstallHooks,
			engine.StepEmitActivation:      rs.stepEmitActivation,
			engine.StepValidateEnvironment: rs.stepValidateEnvironment,
		},
		ParallelItems: map[engine.StepKind]engine.ParallelItemsFunc{
			engine.StepInstallCapabilities: rs.capabilityItems,
			engine.StepInstallDevTools:     rs.devToolItems,
		},
	}

	return exec.Run(ctx)
}

func (rs *regenState) stepProbePlatform(ctx context.Context, _ string) error {
	rs.root.Platform = platform.Probe(ctx)
	return nil
}

func (rs *regenState) stepLoadManifest(_ context.Context, _ string) error {
	return rs.root.loadManifest()
}

func (rs *regenState) stepIntrospectProject(_ context.Context, _ string) error {
	profile, err := introspect.Ensure(rs.root.Dir)
	if err != nil {
		return err
	}
	rs.root.Profile = profile
	return nil
}

func (rs *regenState) stepResolveCapabilities(_ context.Context, _ string) error {
	ids := introspect.CapabilityUnion(rs.root.Profile.RequiredCapabilities, rs.root.Manifest.Capabilities)
	key := platformKey(rs.root.Platform)

	mappings := make(map[string]*capability.PlatformMapping, len(ids))
	for _, id := range ids {
		m, err := rs.root.Registry.Lookup(id, key)
		if err != nil {
			decision := engine.Decide(rs.strict, err)
			if !decision.Proceed {
				return err
			}
			rs.report.Add(engine.StepResolveCapabilities, decision.Reason)
			continue
		}
		if override, ok := rs.root.Manifest.CapabilityOverrides[id]; ok {
			overridden := *m
			overridden.PackageName = override
			m = &overridden
		}
		mappings[id] = m
	}
	rs.mappings = mappings
	return nil
}

func (rs *regenState) capabilityItems() []string {
	ids := make([]string, 0, len(rs.mappings))
	for id := range rs.mappings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (rs *regenState) stepInstallCapabilities(ctx context.Context, item string) error {
	if rs.dryRun {
		return nil
	}
	m := rs.mappings[item]
	name, args, needsPrivilege, err := capability.InstallCommand(m)
	if err != nil {
		decision := engine.Decide(rs.strict, err)
		if !decision.Proceed {
			return err
		}
		rs.report.Add(engine.StepInstallCapabilities, decision.Reason)
		return nil
	}

	// A serializing manager needs elevated privileges; on a host without
	// them, fail without even attempting the install, proposing any
	// registered alternative (e.g. a pip-installable wheel) instead of
	// just reporting the manager's own permission-denied exit (§8 S2).
	if needsPrivilege && !rs.root.Platform.PrivilegeAvailable {
		wrapped := obs.New(obs.KindPackageManagerMissing, "capability", item, errNoPrivilege(name, m.Alternatives))
		decision := engine.Decide(rs.strict, wrapped)
		if !decision.Proceed {
			return wrapped
		}
		rs.report.Add(engine.StepInstallCapabilities, decision.Reason)
		return nil
	}

	run := func() (*sandbox.Result, error) {
		return sandbox.Run(ctx, rs.root.Dir, os.Environ(), name, args...)
	}

	var res *sandbox.Result
	if needsPrivilege {
		res, err = rs.runSerialized(name, run)
	} else {
		res, err = run()
	}
	if err != nil {
		wrapped := obs.New(obs.KindTransientNetwork, "capability", item, err)
		decision := engine.Decide(rs.strict, wrapped)
		if !decision.Proceed {
			return wrapped
		}
		rs.report.Add(engine.StepInstallCapabilities, decision.Reason)
		return nil
	}
	if res.ExitCode != 0 {
		wrapped := obs.New(obs.KindPackageManagerMissing, "capability", item,
			fmt.Errorf("%s exited %d: %s", name, res.ExitCode, res.Output))
		decision := engine.Decide(rs.strict, wrapped)
		if !decision.Proceed {
			return wrapped
		}
		rs.report.Add(engine.StepInstallCapabilities, decision.Reason)
		return nil
	}

	return rs.runPostInstallSteps(m)
}

// runSerialized runs fn under a per-manager-command mutex, so two
// capabilities mapped to the same serializing package manager never hold
// its lock concurrently (§4.I's "[FULL] Parallel capability installs").
func (rs *regenState) runSerialized(managerCommand string, fn func() (*sandbox.Result, error)) (*sandbox.Result, error) {
	v, _ := rs.managerLocks.LoadOrStore(managerCommand, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

// errNoPrivilege describes why a privileged manager was never invoked,
// naming any registered alternative so the caller isn't left guessing.
func errNoPrivilege(command string, alternatives []string) error {
	if len(alternatives) == 0 {
		return fmt.Errorf("%s requires elevated privileges, none available", command)
	}
	return fmt.Errorf("%s requires elevated privileges, none available; consider %s instead",
		command, strings.Join(alternatives, ", "))
}

func (rs *regenState) runPostInstallSteps(m *capability.PlatformMapping) error {
	for _, step := range m.PostInstallSteps {
		if step.SelfTest != "" {
			if err := capability.RunSelfTest(step.SelfTest); err != nil {
				if rs.strict {
					return obs.New(obs.KindStrictModeViolation, "capability", m.CapabilityID, err)
				}
				rs.report.Add(engine.StepInstallCapabilities, fmt.Sprintf("self-test %s failed: %v", step.SelfTest, err))
			}
			continue
		}
		if len(step.Command) == 0 {
			continue
		}
		res, err := sandbox.Run(context.Background(), rs.root.Dir, os.Environ(), step.Command[0], step.Command[1:]...)
		if err != nil || res.ExitCode != 0 {
			return fmt.Errorf("post-install step for %s failed", m.CapabilityID)
		}
	}
	return nil
}

func (rs *regenState) stepEnsureInterpreter(ctx context.Context, _ string) error {
	if rs.dryRun {
		return nil
	}
	interp, err := resolvedInterpreter(ctx, rs.root, rs.strict)
	if err != nil {
		return err
	}
	rs.interp = interp
	return nil
}

func (rs *regenState) stepCreateEnvironment(_ context.Context, _ string) error {
	if rs.dryRun {
		return nil
	}
	return interpreter.CreateEnvironment(rs.root.Dir, rs.interp)
}

func (rs *regenState) stepInstallDependencies(ctx context.Context, _ string) error {
	lock, err := loadLockFile(rs.root.Dir)
	if err != nil {
		return err
	}

	steps := depinstall.Plan(lock, installedVersions(rs.root.Dir))
	return depinstall.Install(ctx, steps, depinstall.Options{
		PythonBin:      rs.root.PythonBin,
		EnvironmentDir: rs.root.Dir,
		DryRun:         rs.dryRun,
	})
}

func (rs *regenState) devToolItems() []string {
	names := make([]string, 0, len(rs.root.Manifest.Tools))
	for name := range rs.root.Manifest.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (rs *regenState) stepInstallDevTools(ctx context.Context, item string) error {
	if rs.dryRun {
		return nil
	}
	version := rs.root.Manifest.Tools[item]
	_, err := devtools.InstallOne(ctx, rs.root.PythonBin, rs.root.Dir, rs.root.BinDir, item, version)
	return err
}

// stepInstallHooks installs each declared hook (e.g. "pre-commit") by
// invoking its dev-tool wrapper's own install verb, per §4.I step 8. Hooks
// are only meaningful for tools already installed via install_dev_tools,
// since wrappers are the only path DHT ever invokes a tool through.
func (rs *regenState) stepInstallHooks(ctx context.Context, _ string) error {
	if rs.dryRun {
		return nil
	}
	for _, name := range rs.root.Manifest.Hooks {
		wrapper := filepath.Join(rs.root.BinDir, name)
		res, err := sandbox.Run(ctx, rs.root.Dir, os.Environ(), wrapper, "install")
		if err != nil {
			wrapped := obs.New(obs.KindBuildFailed, "hooks", name, err)
			decision := engine.Decide(rs.strict, wrapped)
			if !decision.Proceed {
				return wrapped
			}
			rs.report.Add(engine.StepInstallHooks, decision.Reason)
			continue
		}
		if res.ExitCode != 0 {
			wrapped := obs.New(obs.KindBuildFailed, "hooks", name,
				fmt.Errorf("%s install exited %d: %s", name, res.ExitCode, res.Output))
			decision := engine.Decide(rs.strict, wrapped)
			if !decision.Proceed {
				return wrapped
			}
			rs.report.Add(engine.StepInstallHooks, decision.Reason)
		}
	}
	return nil
}

// stepEmitActivation renders the normalized environment into a shell
// activation script and its .env twin (§6's "dual env-var rendering"), so
// both a sourced shell session and a plain KEY=value reader observe the
// same variables.
func (rs *regenState) stepEmitActivation(_ context.Context, _ string) error {
	if rs.dryRun {
		return nil
	}
	env := envutil.Sanitize(rs.root.Dir)
	env.PathPrefix = append([]string{rs.root.BinDir}, env.PathPrefix...)

	if err := envutil.WriteActivationScript(rs.root.Dir, rs.root.BinDir, env); err != nil {
		return fmt.Errorf("writing activation script: %w", err)
	}
	if err := envutil.WriteDotEnv(rs.root.Dir, env); err != nil {
		return fmt.Errorf("writing .env: %w", err)
	}
	return nil
}

func (rs *regenState) stepValidateEnvironment(_ context.Context, _ string) error {
	if rs.dryRun {
		return nil
	}
	interpVersion := ""
	if rs.interp != nil {
		interpVersion = rs.interp.Version
	} else {
		v, err := probeInterpreterVersion(rs.root.PythonBin)
		if err != nil {
			return err
		}
		interpVersion = v
	}
	snapshot, err := fingerprint.Capture(rs.root.PythonBin, rs.mappingIDs(), interpVersion, rs.root.Profile.InputsDigest)
	if err != nil {
		return err
	}
	digest, err := fingerprint.Digest(snapshot)
	if err != nil {
		return err
	}

	rs.root.Manifest.Fingerprint.Environment = digest
	rs.root.Manifest.Fingerprint.Config = rs.root.Profile.InputsDigest
	rs.root.Manifest.Interpreter.Version = interpVersion
	return manifest.Write(rs.root.ManifestAt, rs.root.Manifest, inferredManifest(rs.root.Profile))
}

func (rs *regenState) mappingIDs() []string {
	ids := make([]string, 0, len(rs.mappings))
	for id := range rs.mappings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// loadLockFile selects the resolver-native lockfile when present, falling
// back to the hashed-requirements format (§6's lockfile format selection).
func loadLockFile(dir string) (*parsers.LockFile, error) {
	nativePath := filepath.Join(dir, lockFileName)
	if _, err := os.Stat(nativePath); err == nil {
		return parsers.ParseLockFile(nativePath)
	}

	reqPath := filepath.Join(dir, requirementsFileName)
	if _, err := os.Stat(reqPath); err == nil {
		deps, err := parsers.ParseHashedRequirements(reqPath)
		if err != nil {
			return nil, err
		}
		return &parsers.LockFile{ResolverID: "hashed-requirements", Dependencies: deps}, nil
	}

	return nil, newUserError("no %s or %s found in %s", lockFileName, requirementsFileName, dir)
}

// installedVersions reports what depinstall.Plan should treat as already
// satisfied, read from the environment's own site-packages via the same
// pip-list probe the validator uses.
func installedVersions(environmentDir string) map[string]string {
	snapshot, err := fingerprint.Capture(pythonBin(environmentDir), nil, "", "")
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(snapshot.Packages))
	for _, p := range snapshot.Packages {
		out[p.Name] = p.Version
	}
	return out
}
