// Simulator orchestrating one instrumented simulation run
package sim

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/iti/rngstream"

	"iotsim/internal/config"
	"iotsim/internal/flowmon"
	"iotsim/internal/routing"
	"iotsim/internal/telemetry"
	"iotsim/internal/topology"
	"iotsim/internal/traffic"
)

// Application traffic constants from the study scenario. All application
// traffic terminates on the first node.
const (
	normalPort    = 9
	maliciousPort = 10

	normalTrafficStart      = 1.0
	interferingTrafficStart = 5.0
	maliciousTrafficStart   = 10.0

	// The combined end-of-run callback runs this close to the horizon.
	finalizeOffset = 0.1
)

// runningMetrics is one node's in-place rolling record, overwritten by the
// flow-statistics sampler each tick and read by the aggregator.
type runningMetrics struct {
	throughput float64
	delay      float64
	jitter     float64
}

// generatorSchedule binds a traffic generator to its cadence.
type generatorSchedule struct {
	gen      *traffic.Generator
	start    float64
	interval float64
}

// Simulator is the run-scoped context: it owns every per-node table, the
// flow monitor, the writer state and the scheduled work for exactly one run.
// Nothing outlives it and nothing about a run is package-level.
type Simulator struct {
	cfg   *config.Config
	log   *slog.Logger
	sched Scheduler

	nodes  []*topology.Node
	mobile []*topology.Node
	proto  routing.Protocol

	monitor    *flowmon.Monitor
	network    *traffic.Network
	generators []generatorSchedule

	csv   *CSVWriter
	extra MetricsWriter

	runID      string
	running    map[int]*runningMetrics
	lastEnergy map[int]float64
}

// New builds the run context: seeds the RNG streams, constructs the
// topology, installs the routing protocol handle, wires traffic onto the
// flow monitor and records the run and node metadata. extra may be nil.
func New(cfg *config.Config, log *slog.Logger, sched Scheduler, extra MetricsWriter) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rngstream.SetRngStreamMasterSeed(cfg.Seed)

	proto, err := routing.New(cfg.RoutingProtocol)
	if err != nil {
		return nil, err
	}

	nodes, err := topology.Build(cfg)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("sim: topology produced no nodes")
	}

	s := &Simulator{
		cfg:        cfg,
		log:        log,
		sched:      sched,
		nodes:      nodes,
		mobile:     topology.Select(nodes, topology.CategoryMobile),
		proto:      proto,
		monitor:    flowmon.New(),
		csv:        NewCSVWriter(cfg.OutputDir, log),
		extra:      extra,
		runID:      uuid.New().String(),
		running:    make(map[int]*runningMetrics, len(nodes)),
		lastEnergy: make(map[int]float64, len(nodes)),
	}
	for _, n := range nodes {
		s.running[n.ID] = &runningMetrics{}
	}

	s.network = traffic.NewNetwork(sched, s.monitor, nodes)
	sinkNode := nodes[0]
	s.network.AddSink(traffic.NewSink(sinkNode, normalPort, "normal", s))
	s.network.AddSink(traffic.NewSink(sinkNode, maliciousPort, "malicious", s))
	s.buildGenerators(sinkNode)

	s.writeNodeMetadata(nodes)
	s.writeRunMetadata(telemetry.RunMetadata{
		RunID:       s.runID,
		Protocol:    cfg.RoutingProtocol,
		Fixed:       cfg.FixedNodes,
		Mobile:      cfg.MobileNodes,
		Malicious:   cfg.MaliciousNodes,
		Interfering: cfg.InterferingNodes,
		SimTime:     cfg.SimTime,
		Seed:        cfg.Seed,
		ConfigName:  cfg.ConfigName,
		Timestamp:   time.Now(),
	})

	return s, nil
}

// buildGenerators installs the constant-rate application traffic: normal
// traffic from fixed and mobile nodes, flood traffic from malicious nodes,
// channel load from interfering nodes.
func (s *Simulator) buildGenerators(dst *topology.Node) {
	size := s.cfg.Traffic.PacketSize
	add := func(n *topology.Node, port uint16, cat traffic.Category, start, interval float64) {
		s.generators = append(s.generators, generatorSchedule{
			gen:      traffic.NewGenerator(s.network, n, dst, port, cat, size),
			start:    start,
			interval: interval,
		})
	}
	for _, n := range s.nodes {
		switch n.Category {
		case topology.CategoryFixed, topology.CategoryMobile:
			add(n, normalPort, traffic.Normal, normalTrafficStart, s.cfg.Traffic.NormalInterval)
		case topology.CategoryMalicious:
			add(n, maliciousPort, traffic.Malicious, maliciousTrafficStart, s.cfg.Traffic.MaliciousInterval)
		case topology.CategoryInterfering:
			add(n, normalPort, traffic.Interfering, interferingTrafficStart, s.cfg.Traffic.NormalInterval)
		}
	}
}

// Run schedules all periodic work and drives virtual time to the horizon.
func (s *Simulator) Run() error {
	horizon := s.cfg.SimTime
	s.log.Info("starting run",
		"run_id", s.runID,
		"protocol", s.cfg.RoutingProtocol,
		"nodes", len(s.nodes),
		"sim_time", horizon,
		"seed", s.cfg.Seed,
	)

	for _, smp := range s.samplers() {
		smp.Install(s.sched)
	}
	for _, gs := range s.generators {
		(&Sampler{
			Name:     "traffic",
			Start:    gs.start,
			Interval: gs.interval,
			Horizon:  horizon,
			Sample:   gs.gen.Emit,
		}).Install(s.sched)
	}
	s.sched.Schedule(horizon-finalizeOffset, func() { s.finalize(s.sched.Now()) })

	s.sched.Run(horizon)
	s.csv.Close()

	s.log.Info("run complete", "run_id", s.runID)
	return nil
}

// LogPacket implements traffic.PacketLogger on top of the CSV writer. A
// failed append is logged and dropped; simulated time never stalls on it.
func (s *Simulator) LogPacket(sinkKind string, row telemetry.PacketRow) {
	stream := StreamPacketsNormal
	if sinkKind == "malicious" {
		stream = StreamPacketsMalicious
	}
	err := s.csv.Append(stream, []string{
		formatWallTime(row.Timestamp),
		row.SourceIP,
		strconv.Itoa(int(row.Port)),
		row.TrafficType,
		strconv.Itoa(row.PacketSize),
		formatFloat(row.SimTime),
	})
	if err != nil {
		s.log.Error("packet log dropped", "stream", stream, "err", err)
	}
}
