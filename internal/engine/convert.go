package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	composetypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
)

// Canonical compose labels stamped on every managed container, so that
// containers created here and by other compose tooling recognize each
// other.
const (
	labelProject         = "com.docker.compose.project"
	labelService         = "com.docker.compose.service"
	labelContainerNumber = "com.docker.compose.container-number"
	labelConfigHash      = "com.docker.compose.config-hash"
)

func containerName(projectName string, svc composetypes.ServiceConfig, index int) string {
	if svc.ContainerName != "" {
		return svc.ContainerName
	}
	return fmt.Sprintf("%s-%s-%d", projectName, svc.Name, index)
}

func imageTag(projectName string, svc composetypes.ServiceConfig) string {
	if svc.Image != "" {
		return svc.Image
	}
	return projectName + "-" + svc.Name
}

// containerConfig translates a service declaration into the create
// payload for one of its numbered containers.
func containerConfig(project *composetypes.Project, svc composetypes.ServiceConfig, index int) (*container.Config, *container.HostConfig) {
	labels := make(map[string]string, len(svc.Labels)+4)
	for k, v := range svc.Labels {
		labels[k] = v
	}
	labels[labelProject] = project.Name
	labels[labelService] = svc.Name
	labels[labelContainerNumber] = strconv.Itoa(index)
	labels[labelConfigHash] = configHash(svc)

	cfg := &container.Config{
		Image:      imageTag(project.Name, svc),
		Cmd:        []string(svc.Command),
		Entrypoint: []string(svc.Entrypoint),
		Env:        environmentList(svc.Environment),
		Labels:     labels,
		User:       svc.User,
	}

	hostCfg := &container.HostConfig{
		RestartPolicy: restartPolicy(svc.Restart),
	}

	if len(svc.Ports) > 0 {
		exposed := make(nat.PortSet, len(svc.Ports))
		bindings := make(nat.PortMap, len(svc.Ports))
		for _, p := range svc.Ports {
			proto := strings.ToLower(p.Protocol)
			if proto == "" {
				proto = "tcp"
			}
			port := nat.Port(fmt.Sprintf("%d/%s", p.Target, proto))
			exposed[port] = struct{}{}
			if p.Published != "" {
				bindings[port] = append(bindings[port], nat.PortBinding{HostIP: p.HostIP, HostPort: p.Published})
			}
		}
		cfg.ExposedPorts = exposed
		hostCfg.PortBindings = bindings
	}

	for _, v := range svc.Volumes {
		var mountType mount.Type
		switch v.Type {
		case "bind":
			mountType = mount.TypeBind
		case "volume":
			mountType = mount.TypeVolume
		default:
			continue
		}
		hostCfg.Mounts = append(hostCfg.Mounts, mount.Mount{
			Type:     mountType,
			Source:   v.Source,
			Target:   v.Target,
			ReadOnly: v.ReadOnly,
		})
	}

	return cfg, hostCfg
}

func environmentList(env composetypes.MappingWithEquals) []string {
	out := make([]string, 0, len(env))
	for key, value := range env {
		if value == nil {
			out = append(out, key)
		} else {
			out = append(out, key+"="+*value)
		}
	}
	sort.Strings(out)
	return out
}

func restartPolicy(policy string) container.RestartPolicy {
	switch policy {
	case "always":
		return container.RestartPolicy{Name: container.RestartPolicyAlways}
	case "on-failure":
		return container.RestartPolicy{Name: container.RestartPolicyOnFailure}
	case "unless-stopped":
		return container.RestartPolicy{Name: container.RestartPolicyUnlessStopped}
	default:
		return container.RestartPolicy{Name: container.RestartPolicyDisabled}
	}
}

// configHash fingerprints the parts of a service declaration that
// require a container to be recreated when they change. The hash is
// stamped on created containers and compared on the next convergence.
func configHash(svc composetypes.ServiceConfig) string {
	ports := make([]string, 0, len(svc.Ports))
	for _, p := range svc.Ports {
		ports = append(ports, fmt.Sprintf("%s:%s:%d/%s", p.HostIP, p.Published, p.Target, p.Protocol))
	}
	sort.Strings(ports)

	volumes := make([]string, 0, len(svc.Volumes))
	for _, v := range svc.Volumes {
		volumes = append(volumes, fmt.Sprintf("%s:%s:%s:%t", v.Type, v.Source, v.Target, v.ReadOnly))
	}
	sort.Strings(volumes)

	fingerprint := struct {
		Image      string   `json:"image"`
		Command    []string `json:"command"`
		Entrypoint []string `json:"entrypoint"`
		Env        []string `json:"env"`
		Ports      []string `json:"ports"`
		Volumes    []string `json:"volumes"`
		User       string   `json:"user"`
		Restart    string   `json:"restart"`
	}{
		Image:      svc.Image,
		Command:    []string(svc.Command),
		Entrypoint: []string(svc.Entrypoint),
		Env:        environmentList(svc.Environment),
		Ports:      ports,
		Volumes:    volumes,
		User:       svc.User,
		Restart:    svc.Restart,
	}

	data, _ := json.Marshal(fingerprint)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
