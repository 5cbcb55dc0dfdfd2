package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and A/B testing.
// Supports gradual rollout, user targeting, and time-boxed experiments.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[int64]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Users are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time

	// A/B test variant (for experiments)
	Variants []string
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID  int64
	IsAdmin bool
}

// Predefined feature flag names.
const (
	// === Quiz Features ===
	FeatureQuizSubmissions     = "quiz.submissions"      // Accept quiz submissions
	FeatureQuizHistory         = "quiz.history"          // Attempt history endpoint
	FeatureQuizDetailedResults = "quiz.detailed_results" // Per-question breakdown in results

	// === Progress Features ===
	FeatureProgressTracking   = "progress.tracking"   // Accept viewing reports
	FeatureProgressStats      = "progress.stats"      // Aggregated learner stats
	FeatureProgressCompletion = "progress.completion" // Completion events

	// === Subscription Features ===
	FeatureSubscriptionSignup     = "subscription.signup"      // New subscriptions
	FeatureSubscriptionPlanChange = "subscription.plan_change" // In-place plan switches

	// === Caching Features ===
	FeatureCacheEntitlements = "cache.entitlements"  // Redis entitlement cache
	FeatureCacheLearnerStats = "cache.learner_stats" // Redis stats cache
	FeatureCachePlans        = "cache.plans"         // Redis plan catalog cache

	// === Experimental Features ===
	FeatureExperimentalRecommendations = "experimental.recommendations" // Course recommendations
	FeatureExperimentalAnnualBilling   = "experimental.annual_billing"  // Yearly plan pricing
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[int64]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Quiz features - core flow, enabled by default
	ff.features[FeatureQuizSubmissions] = &Feature{
		Name:           FeatureQuizSubmissions,
		Description:    "Accept and grade quiz submissions",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureQuizHistory] = &Feature{
		Name:           FeatureQuizHistory,
		Description:    "Expose attempt history",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureQuizDetailedResults] = &Feature{
		Name:           FeatureQuizDetailedResults,
		Description:    "Include per-question breakdown in grading results",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Progress features - core flow, enabled by default
	ff.features[FeatureProgressTracking] = &Feature{
		Name:           FeatureProgressTracking,
		Description:    "Accept viewing reports",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureProgressStats] = &Feature{
		Name:           FeatureProgressStats,
		Description:    "Aggregated learner statistics",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureProgressCompletion] = &Feature{
		Name:           FeatureProgressCompletion,
		Description:    "Emit course completion events",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Subscription features
	ff.features[FeatureSubscriptionSignup] = &Feature{
		Name:           FeatureSubscriptionSignup,
		Description:    "Allow new subscriptions",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureSubscriptionPlanChange] = &Feature{
		Name:           FeatureSubscriptionPlanChange,
		Description:    "Allow in-place plan switches",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Caching features - can be pulled per-cache without redeploy
	ff.features[FeatureCacheEntitlements] = &Feature{
		Name:           FeatureCacheEntitlements,
		Description:    "Cache entitlement lookups in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCacheLearnerStats] = &Feature{
		Name:           FeatureCacheLearnerStats,
		Description:    "Cache learner stats in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCachePlans] = &Feature{
		Name:           FeatureCachePlans,
		Description:    "Cache the plan catalog in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalRecommendations] = &Feature{
		Name:           FeatureExperimentalRecommendations,
		Description:    "Course recommendations",
		Enabled:        false,
		RolloutPercent: 0,
	}

	ff.features[FeatureExperimentalAnnualBilling] = &Feature{
		Name:           FeatureExperimentalAnnualBilling,
		Description:    "Yearly plan pricing",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_QUIZ_SUBMISSIONS=true
// Example: FEATURE_EXPERIMENTAL_RECOMMENDATIONS=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "quiz.submissions" -> "FEATURE_QUIZ_SUBMISSIONS"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != 0 {
		if userOverrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	// Check if feature is enabled at all
	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != 0 {
		return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a user is in the rollout percentage.
// Uses consistent hashing so users stay in their bucket.
func (ff *FeatureFlags) isInRollout(userID int64, featureName string, percent int) bool {
	// Create a consistent hash for this user+feature combination
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(strconv.FormatInt(userID, 10)))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// GetVariant returns the A/B test variant for a user.
// Returns empty string if no variants defined or feature disabled.
func (ff *FeatureFlags) GetVariant(featureName string, ctx *FeatureContext) string {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok || !ff.IsEnabled(featureName, ctx) {
		return ""
	}

	if len(feature.Variants) == 0 {
		return ""
	}

	// Use consistent hashing to assign variant
	h := fnv.New32a()
	h.Write([]byte(featureName + "_variant"))
	h.Write([]byte(strconv.FormatInt(ctx.UserID, 10)))
	hash := h.Sum32()

	variantIndex := int(hash % uint32(len(feature.Variants)))
	return feature.Variants[variantIndex]
}

// SetUserOverride sets a feature override for a specific user.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(userID int64, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID int64) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		// Return a copy
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
