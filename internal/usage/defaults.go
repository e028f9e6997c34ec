package usage

// FreeLimit is the number of analyses included in the free plan.
const FreeLimit = 3

const (
	noteFree      = "Plano Gratuito"
	noteUnlimited = "Análises ilimitadas"
)
