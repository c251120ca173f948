package assemble

import (
	"fmt"

	"github.com/leapstack-labs/tablook/pkg/core"
)

// collector accumulates findings in discovery order.
type collector struct {
	findings []core.Finding
}

func (c *collector) add(kind core.FindingKind, sev core.Severity, dsID, entity, id, format string, args ...any) {
	c.findings = append(c.findings, core.Finding{
		Kind:         kind,
		Severity:     sev,
		DatasourceID: dsID,
		Entity:       entity,
		EntityID:     id,
		Message:      fmt.Sprintf(format, args...),
	})
}

func (c *collector) unresolved(sev core.Severity, dsID, entity, id, format string, args ...any) {
	c.add(core.FindingUnresolved, sev, dsID, entity, id, format, args...)
}

func (c *collector) ambiguous(sev core.Severity, dsID, entity, id, format string, args ...any) {
	c.add(core.FindingAmbiguous, sev, dsID, entity, id, format, args...)
}

func (c *collector) review(sev core.Severity, dsID, entity, id, format string, args ...any) {
	c.add(core.FindingReview, sev, dsID, entity, id, format, args...)
}
