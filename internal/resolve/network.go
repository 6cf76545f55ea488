package resolve

import (
	"context"
	"net"

	"github.com/rs/zerolog"

	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/models"
)

// StaticNetwork is an operator-supplied network descriptor. A non-empty
// IP forces the resolved identity regardless of what any probe reports.
type StaticNetwork struct {
	IP      string
	Gateway string
	Subnet  string
}

// netFacts is one strategy's partial answer. Empty fields are facts the
// strategy could not determine, not errors.
type netFacts struct {
	ip   string
	gw   string
	mask string
	mode models.AssignmentMode
}

// netStrategy is one entry of the host-identity strategy chain.
type netStrategy struct {
	name  string
	probe func(ctx context.Context) (netFacts, error)
}

// NetworkResolver answers "what is the physical host's network
// identity?" by running an ordered strategy chain and merging partial
// answers field by field: the first strategy to produce a field wins
// that field, and a strategy that found the IP but not the gateway does
// not block a later strategy's gateway.
type NetworkResolver struct {
	override   StaticNetwork
	ifacePrio  []string
	hostNet    *probe.HostNet
	routeTable *probe.RouteTable
	fibTrie    *probe.FIBTrie
	outbound   func() (string, error)
	ifaceAddr  func(name string) (ip, mask string, err error)
	log        zerolog.Logger
}

// NewNetworkResolver builds the resolver with production probes.
func NewNetworkResolver(override StaticNetwork, ifacePriority []string, hostNet *probe.HostNet, routeTable *probe.RouteTable, fibTrie *probe.FIBTrie, log zerolog.Logger) *NetworkResolver {
	return &NetworkResolver{
		override:   override,
		ifacePrio:  ifacePriority,
		hostNet:    hostNet,
		routeTable: routeTable,
		fibTrie:    fibTrie,
		outbound:   probe.OutboundIP,
		ifaceAddr:  probe.InterfaceAddr,
		log:        log,
	}
}

// Resolve runs the strategy chain. It never returns an error: a field no
// strategy could produce stays empty and AssignmentMode stays unknown.
func (r *NetworkResolver) Resolve(ctx context.Context) models.NetworkIdentity {
	identity := models.NetworkIdentity{AssignmentMode: models.AssignmentUnknown}

	// The container's own outbound address is reported as-is; it is an
	// artifact of the sandbox, not subject to the exclusion rule.
	if ip, err := r.outbound(); err == nil {
		identity.ContainerIP = ip
	}

	if r.override.IP != "" {
		identity.HostIP = r.override.IP
		identity.Gateway = r.override.Gateway
		identity.SubnetMask = r.override.Subnet
		identity.AssignmentMode = models.AssignmentStaticOverride
		identity.SourceStrategy = "operator_override"
	}

	for _, s := range r.strategies() {
		if identity.HostIP != "" && identity.Gateway != "" && identity.SubnetMask != "" {
			break
		}
		facts, err := s.probe(ctx)
		if err != nil {
			r.log.Debug().Str("strategy", s.name).Err(err).Msg("network strategy failed")
			continue
		}
		r.merge(&identity, facts, s.name)
	}

	return identity
}

// strategies returns the chain in precedence order. The operator
// override is applied before the chain runs, so it is not listed here.
func (r *NetworkResolver) strategies() []netStrategy {
	return []netStrategy{
		{"host_default_route", r.probeHostRoute},
		{"route_table", r.probeRouteTable},
		{"fib_trie", r.probeFIBTrie},
		{"outbound_socket", r.probeOutbound},
		{"interface_scan", r.probeInterfaces},
	}
}

// merge fills identity's empty fields from facts, applying the
// address-range exclusion rule uniformly. The assignment-mode marker is
// adopted only from the strategy that supplied the winning IP; an
// operator override set earlier is never displaced.
func (r *NetworkResolver) merge(identity *models.NetworkIdentity, facts netFacts, strategy string) {
	if identity.HostIP == "" && facts.ip != "" && !ExcludedAddress(facts.ip) {
		identity.HostIP = facts.ip
		identity.SourceStrategy = strategy
		if facts.mode != "" && identity.AssignmentMode == models.AssignmentUnknown {
			identity.AssignmentMode = facts.mode
		}
	}
	if identity.Gateway == "" && facts.gw != "" && !ExcludedAddress(facts.gw) {
		identity.Gateway = facts.gw
	}
	if identity.SubnetMask == "" && facts.mask != "" {
		identity.SubnetMask = facts.mask
	}
}

// probeHostRoute asks the host's network namespace for its default route
// and then for the address configured on the egress interface. The
// "dynamic" keyword on the address marks a DHCP lease.
func (r *NetworkResolver) probeHostRoute(ctx context.Context) (netFacts, error) {
	gw, iface, err := r.hostNet.DefaultRoute(ctx)
	if err != nil {
		return netFacts{}, err
	}
	facts := netFacts{gw: gw}
	if iface == "" {
		return facts, nil
	}
	ip, mask, dhcp, err := r.hostNet.InterfaceAddr(ctx, iface)
	if err != nil {
		// Gateway alone is a useful partial answer.
		r.log.Debug().Str("iface", iface).Err(err).Msg("host interface address unavailable")
		return facts, nil
	}
	facts.ip = ip
	facts.mask = mask
	if dhcp {
		facts.mode = models.AssignmentDHCP
	} else {
		facts.mode = models.AssignmentStatic
	}
	return facts, nil
}

func (r *NetworkResolver) probeRouteTable(ctx context.Context) (netFacts, error) {
	gw, err := r.routeTable.DefaultGateway()
	if err != nil {
		return netFacts{}, err
	}
	return netFacts{gw: gw}, nil
}

// probeFIBTrie scans the forwarding information base for locally
// assigned host addresses; the first non-excluded one is the candidate.
func (r *NetworkResolver) probeFIBTrie(ctx context.Context) (netFacts, error) {
	addrs, err := r.fibTrie.HostAddresses()
	if err != nil {
		return netFacts{}, err
	}
	for _, a := range addrs {
		if !ExcludedAddress(a) {
			return netFacts{ip: a}, nil
		}
	}
	return netFacts{}, nil
}

func (r *NetworkResolver) probeOutbound(ctx context.Context) (netFacts, error) {
	ip, err := r.outbound()
	if err != nil {
		return netFacts{}, err
	}
	return netFacts{ip: ip}, nil
}

// probeInterfaces walks the operator-configured interface priority list.
func (r *NetworkResolver) probeInterfaces(ctx context.Context) (netFacts, error) {
	for _, name := range r.ifacePrio {
		ip, mask, err := r.ifaceAddr(name)
		if err != nil {
			continue
		}
		if ExcludedAddress(ip) {
			continue
		}
		return netFacts{ip: ip, mask: mask}, nil
	}
	return netFacts{}, probe.ErrUnavailable
}

// bridgeRange is the private block the container runtime carves its
// internal bridge networks from. Addresses in it describe the sandbox,
// not the host's LAN identity.
var bridgeRange = func() *net.IPNet {
	_, n, _ := net.ParseCIDR("172.16.0.0/12")
	return n
}()

// ExcludedAddress reports whether an address is a sandbox artifact:
// loopback or inside the runtime's internal bridge range. The rule
// applies uniformly to every strategy's output.
func ExcludedAddress(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return true
	}
	return ip.IsLoopback() || bridgeRange.Contains(ip)
}
