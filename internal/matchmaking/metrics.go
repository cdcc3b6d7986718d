package matchmaking

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    likesTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "matchmaking_likes_total",
            Help: "Total number of like actions",
        },
        []string{"outcome"},
    )

    passesTotal = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "matchmaking_passes_total",
            Help: "Total number of pass actions",
        },
    )

    matchesTotal = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "matchmaking_matches_total",
            Help: "Total number of mutual matches created",
        },
    )

    candidateRarity = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "matchmaking_candidate_rarity_total",
            Help: "Candidates served, by rarity tier",
        },
        []string{"tier"},
    )

    compatibilityPoints = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "matchmaking_compatibility_points",
            Help:    "Distribution of raw compatibility points",
            Buckets: prometheus.LinearBuckets(0, 2, 8),
        },
    )

    discoveryDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name: "matchmaking_discovery_duration_seconds",
            Help: "Time spent building candidate sets",
        },
        []string{"mode"},
    )

    boosterTierFills = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "matchmaking_booster_tier_fills_total",
            Help: "Booster pack slots filled, by cascade tier",
        },
        []string{"tier"},
    )
)

func RecordLike(outcome string) {
    likesTotal.WithLabelValues(outcome).Inc()
}

func RecordPass() {
    passesTotal.Inc()
}

func RecordMatch() {
    matchesTotal.Inc()
}

func RecordRarity(tier Rarity) {
    candidateRarity.WithLabelValues(string(tier)).Inc()
}

func RecordCompatibilityPoints(points int) {
    compatibilityPoints.Observe(float64(points))
}

func RecordDiscoveryDuration(mode string, duration time.Duration) {
    discoveryDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func RecordBoosterFill(source CandidateSource, slots int) {
    boosterTierFills.WithLabelValues(string(source)).Add(float64(slots))
}
