package platform

import (
	"context"
	"os"
	"runtime"

	"github.com/godbus/dbus/v5"
)

// policyKitInstallAction is the polkit action id package managers register
// for privileged installs on most systemd-based distributions.
const policyKitInstallAction = "org.freedesktop.packagekit.package-install"

// detectPrivilege resolves §4.A's privilege_available field. Effective root
// always wins; otherwise, on Linux, a polkit authority check over the
// session bus answers whether a privileged install could proceed without an
// interactive prompt. Detection is advisory: any failure to reach the bus
// (no session bus, a container without D-Bus, a non-Linux host) downgrades
// to false rather than propagating an error, matching the rest of §4.A's
// pure-query, never-fatal contract.
func detectPrivilege(ctx context.Context, family Family) bool {
	if os.Geteuid() == 0 {
		return true
	}
	if family != FamilyLinux || runtime.GOOS != "linux" {
		return false
	}

	cctx, cancel := context.WithTimeout(ctx, managerDetectTimeout)
	defer cancel()

	conn, err := dbus.ConnectSessionBus(dbus.WithContext(cctx))
	if err != nil {
		return false
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.PolicyKit1", "/org/freedesktop/PolicyKit1/Authority")

	subject := struct {
		Kind    string
		Details map[string]dbus.Variant
	}{
		Kind: "unix-process",
		Details: map[string]dbus.Variant{
			"pid":       dbus.MakeVariant(uint32(os.Getpid())),
			"start-time": dbus.MakeVariant(uint64(0)),
		},
	}

	var result struct {
		IsAuthorized bool
		IsChallenge  bool
		Details      map[string]string
	}
	call := obj.CallWithContext(cctx, "org.freedesktop.PolicyKit1.Authority.CheckAuthorization", 0,
		subject, policyKitInstallAction, map[string]string{}, uint32(1), "")
	if call.Err != nil {
		return false
	}
	if err := call.Store(&result.IsAuthorized, &result.IsChallenge, &result.Details); err != nil {
		return false
	}
	return result.IsAuthorized && !result.IsChallenge
}
