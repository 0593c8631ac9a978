package alert

import (
	"go.uber.org/fx"
)

// Module wires the rules holder only; the snapshot service registers
// itself from its own package to keep the dependency direction one way.
var Module = fx.Module("alert.rules",
	fx.Provide(NewRulesHolder),
)
