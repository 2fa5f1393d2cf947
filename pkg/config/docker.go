package config

import (
	"os"
	"sync"
)

// DefaultDockerHostAlias is how a container reaches services on its host.
const DefaultDockerHostAlias = "host.docker.internal"

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker reports whether /.dockerenv exists. Cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolveHostForDocker rewrites loopback hosts so a containerised server can
// reach databases on the machine it runs on. DATADRIFT_DOCKER_HOST overrides
// the alias. Outside Docker the host is returned unchanged.
func ResolveHostForDocker(host string) string {
	return resolveLoopback(host, IsRunningInDocker())
}

func resolveLoopback(host string, inDocker bool) string {
	if !inDocker {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		if alias := os.Getenv("DATADRIFT_DOCKER_HOST"); alias != "" {
			return alias
		}
		return DefaultDockerHostAlias
	}
	return host
}
