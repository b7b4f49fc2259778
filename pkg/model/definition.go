package model

// Definition is the declarative form of an interface, as found in interface
// files. Zero values of optional fields select the documented defaults.
type Definition struct {
	Name         string        `json:"interface_name" yaml:"interface_name"`
	VersionMajor int           `json:"version_major" yaml:"version_major"`
	VersionMinor int           `json:"version_minor" yaml:"version_minor"`
	Type         InterfaceType `json:"type" yaml:"type"`

	// Ownership defaults to device.
	Ownership Ownership `json:"ownership,omitempty" yaml:"ownership,omitempty"`

	// Aggregation defaults to individual.
	Aggregation Aggregation `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Doc         string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Mappings []MappingDefinition `json:"mappings" yaml:"mappings"`
}

// MappingDefinition is the declarative form of a mapping.
type MappingDefinition struct {
	Endpoint string      `json:"endpoint" yaml:"endpoint"`
	Type     MappingType `json:"type" yaml:"type"`

	// Reliability is only meaningful for individual datastreams. Properties
	// are always ReliabilityUnique.
	Reliability Reliability `json:"reliability,omitempty" yaml:"reliability,omitempty"`

	Retention Retention `json:"retention,omitempty" yaml:"retention,omitempty"`

	// Expiry is the retention expiry in seconds; 0 means never.
	Expiry int `json:"expiry,omitempty" yaml:"expiry,omitempty"`

	ExplicitTimestamp bool `json:"explicit_timestamp,omitempty" yaml:"explicit_timestamp,omitempty"`
	AllowUnset        bool `json:"allow_unset,omitempty" yaml:"allow_unset,omitempty"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Doc         string `json:"doc,omitempty" yaml:"doc,omitempty"`
}
