package platform

import (
	"context"
	"net"
	"runtime"

	"github.com/digitalocean/go-libvirt"
)

// libvirtSockets are tried in order; the first reachable one wins.
var libvirtSockets = []string{
	"/var/run/libvirt/libvirt-sock",
	"/var/run/libvirt/libvirt-sock-ro",
}

// detectContainerHost populates Info.container_host. A successful libvirt
// connection's hypervisor type is recorded verbatim (e.g. "QEMU"); absence
// of a reachable libvirt daemon is not an error — most hosts are not
// libvirt-managed, and this field exists purely as diagnostic metadata. It
// is never part of the behavioral fingerprint (§4.J), since the same
// project must fingerprint identically whether or not the host happens to
// also run libvirt.
func detectContainerHost(ctx context.Context) string {
	if runtime.GOOS != "linux" {
		return ""
	}
	for _, path := range libvirtSockets {
		if ht := probeLibvirtSocket(ctx, path); ht != "" {
			return ht
		}
	}
	return ""
}

func probeLibvirtSocket(ctx context.Context, path string) string {
	d := net.Dialer{Timeout: managerDetectTimeout}
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return ""
	}
	defer conn.Close()

	l := libvirt.New(conn)
	if err := l.Connect(); err != nil {
		return ""
	}
	defer l.Disconnect()

	hypervisor, _, err := l.ConnectGetType()
	if err != nil {
		return ""
	}
	return hypervisor
}
