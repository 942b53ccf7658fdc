// Package parser converts raw IATI 2.03 activity XML into the typed
// intermediate representation. Parsing is pure: no I/O, no shared state, and
// a well-formed but non-conformant document still parses — conformance is the
// validators' job. Only two conditions are fatal: malformed XML and an
// activity without an iati-identifier.
package parser

import (
	"encoding/xml"
	"errors"
	"fmt"

	"aims/internal/iati/models"
)

// ParseError is the single fatal error kind the parser produces.
type ParseError struct {
	Line    int64
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
	}
	return "parse error: " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

func syntaxError(err error) *ParseError {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return &ParseError{Line: int64(syn.Line), Message: syn.Msg, Err: err}
	}
	return &ParseError{Message: err.Error(), Err: err}
}

// Parse reads an IATI document and returns its activities in document order.
// The root may be <iati-activities> or a bare <iati-activity>. Unrecognized
// elements anywhere in the tree are ignored.
func Parse(raw []byte) ([]*models.ParsedActivity, error) {
	root, err := decode(raw)
	if err != nil {
		return nil, err
	}

	var activityNodes []*node
	switch root.name {
	case "iati-activities":
		activityNodes = root.all("iati-activity")
	case "iati-activity":
		activityNodes = []*node{root}
	default:
		// Tolerate wrapper elements around the standard root.
		if nested := root.child("iati-activities"); nested != nil {
			activityNodes = nested.all("iati-activity")
		}
	}
	if len(activityNodes) == 0 {
		return nil, &ParseError{Message: "document contains no iati-activity elements"}
	}

	activities := make([]*models.ParsedActivity, 0, len(activityNodes))
	for _, n := range activityNodes {
		activity, err := parseActivity(n)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, nil
}

// ParseOne reads a document expected to describe a single activity. When the
// document contains several, the first is returned unless iatiID selects a
// specific one.
func ParseOne(raw []byte, iatiID string) (*models.ParsedActivity, error) {
	activities, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if iatiID == "" {
		return activities[0], nil
	}
	for _, a := range activities {
		if a.IATIIdentifier == iatiID {
			return a, nil
		}
	}
	return nil, &ParseError{Message: fmt.Sprintf("document contains no activity with identifier %q", iatiID)}
}
