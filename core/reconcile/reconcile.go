// Package reconcile normalizes adapter rows into display recommendations.
// Reconciliation is a pure function of its inputs: the same rows, subject
// name, and lookup table always produce the same output.
package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/netrec/netrec/model"
)

// metaLinePatterns match explanatory notes that some backends emit in place
// of person rows. Such lines are dropped before truncation.
var metaLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)no third`),
	regexp.MustCompile(`(?i)no valid`),
	regexp.MustCompile(`(?i)excluding`),
	regexp.MustCompile(`(?i)not provided`),
	regexp.MustCompile(`(?i)^\(?no\b`),
}

const bioExcerptLimit = 120

// Reconciler resolves adapter rows to stable identifiers using a name
// lookup table built from the structured store. Names the table does not
// know resolve to the unknown sentinel, never to an error.
type Reconciler struct {
	nameToID map[string]string
}

// NewReconciler creates a reconciler over a full-name -> identifier table.
// Lookup is case-insensitive; the table may be nil.
func NewReconciler(nameToID map[string]string) *Reconciler {
	folded := make(map[string]string, len(nameToID))
	for name, id := range nameToID {
		folded[strings.ToLower(strings.TrimSpace(name))] = id
	}
	return &Reconciler{nameToID: folded}
}

// Reconcile normalizes raw adapter rows into at most topK recommendations
// and reports how many short of topK the result is. The subject is removed
// by whole-word, case-insensitive name match.
func (r *Reconciler) Reconcile(raw *model.RetrievalResult, subjectName string, topK int) ([]*model.Recommendation, int) {
	if raw == nil || topK <= 0 {
		return nil, topK
	}

	var recommendations []*model.Recommendation
	seen := map[string]bool{}

	for _, row := range raw.Rows {
		rec := r.normalizeRow(row)
		if rec == nil {
			continue
		}
		if isMetaLine(rec.Line) {
			continue
		}
		if matchesSubject(rec.Name, subjectName) {
			continue
		}

		key := rec.PersonID + "\x00" + strings.ToLower(rec.Name)
		if seen[key] {
			continue
		}
		seen[key] = true

		recommendations = append(recommendations, rec)
		if len(recommendations) == topK {
			break
		}
	}

	shortfall := topK - len(recommendations)
	return recommendations, shortfall
}

// FilterRecommendations re-applies meta-line and self-exclusion filtering to
// already reconciled entries. Running it on its own output is a no-op, so
// it is safe as a defensive second pass at render time.
func FilterRecommendations(recommendations []*model.Recommendation, subjectName string) []*model.Recommendation {
	var filtered []*model.Recommendation
	for _, rec := range recommendations {
		if rec == nil || isMetaLine(rec.Line) || matchesSubject(rec.Name, subjectName) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

func (r *Reconciler) normalizeRow(row *model.RetrievalRow) *model.Recommendation {
	if row == nil {
		return nil
	}

	switch {
	case row.Person != nil:
		return r.normalizePerson(row)
	case row.Edge != nil:
		return r.normalizeEdge(row.Edge)
	case row.Raw != nil:
		return r.normalizeRaw(row.Raw)
	default:
		return nil
	}
}

func (r *Reconciler) normalizePerson(row *model.RetrievalRow) *model.Recommendation {
	person := row.Person
	name := strings.TrimSpace(person.FullName)
	if name == "" {
		return nil
	}

	id := person.ID
	if id == "" {
		id = r.resolveName(name)
	}

	var rationale string
	if row.Adapter == model.AdapterSemantic {
		rationale = excerpt(person.BioText)
	} else {
		rationale = attributeRationale(person)
	}

	return &model.Recommendation{
		Line:     displayLine(name, rationale),
		Name:     name,
		PersonID: id,
	}
}

func (r *Reconciler) normalizeEdge(edge *model.AffiliationEdge) *model.Recommendation {
	name := strings.TrimSpace(edge.ToName)
	id := edge.ToID
	if name == "" {
		// The traversal may return bare identifiers when the person row is
		// gone; show the identifier rather than dropping the edge.
		name = id
	}
	if id == "" {
		id = r.resolveName(name)
	}
	if name == "" {
		return nil
	}

	rationale := ""
	if edge.Relation != "" {
		rationale = fmt.Sprintf("shares %s", edge.Relation)
	}

	return &model.Recommendation{
		Line:     displayLine(name, rationale),
		Name:     name,
		PersonID: id,
	}
}

func (r *Reconciler) normalizeRaw(raw map[string]any) *model.Recommendation {
	name := stringField(raw, "full_name", "name")
	if name == "" {
		return nil
	}

	id := stringField(raw, "id", "identifier")
	if id == "" {
		id = r.resolveName(name)
	}

	rationale := stringField(raw, "occupation", "bio_text")
	if occupation := stringField(raw, "occupation"); occupation != "" {
		if location := stringField(raw, "location"); location != "" {
			rationale = fmt.Sprintf("%s in %s", occupation, location)
		}
	}

	return &model.Recommendation{
		Line:     displayLine(name, rationale),
		Name:     name,
		PersonID: id,
	}
}

func (r *Reconciler) resolveName(name string) string {
	if id, ok := r.nameToID[strings.ToLower(strings.TrimSpace(name))]; ok {
		return id
	}
	return model.UnknownID
}

func attributeRationale(person *model.Person) string {
	switch {
	case person.Occupation != "" && person.Location != "":
		return fmt.Sprintf("%s in %s", person.Occupation, person.Location)
	case person.Occupation != "":
		return person.Occupation
	case person.Location != "":
		return person.Location
	default:
		return ""
	}
}

func displayLine(name, rationale string) string {
	if rationale == "" {
		return name
	}
	return fmt.Sprintf("%s - %s", name, rationale)
}

// excerpt trims bio text to a short rationale, cutting at a word boundary.
func excerpt(bio string) string {
	trimmed := strings.Join(strings.Fields(bio), " ")
	if len(trimmed) <= bioExcerptLimit {
		return trimmed
	}

	cut := trimmed[:bioExcerptLimit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

func isMetaLine(line string) bool {
	for _, pattern := range metaLinePatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// matchesSubject reports whether the display name contains the subject name
// as a whole word, ignoring case.
func matchesSubject(name, subjectName string) bool {
	subject := strings.TrimSpace(subjectName)
	if subject == "" {
		return false
	}

	pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(subject) + `\b`)
	return pattern.MatchString(name)
}

func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := raw[key]; ok {
			if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
