package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "idtree_operations_total",
	Help: "Number of tree operations by operation and result",
}, []string{"op", "result"})

// nodesGauge is labelled with the owning service's instance token so that
// services sharing a process report separately.
var nodesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "idtree_nodes",
	Help: "Number of nodes in the tree, root included",
}, []string{"tree"})

var snapshotCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "idtree_snapshot_cache_lookups_total",
	Help: "Number of snapshot cache lookups by outcome",
}, []string{"outcome"})
