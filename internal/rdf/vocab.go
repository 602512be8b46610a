package rdf

// Namespaces used by the gateway documents.
const (
	NSRDF   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSXSD   = "http://www.w3.org/2001/XMLSchema#"
	NSLDP   = "http://www.w3.org/ns/ldp#"
	NSSOSA  = "http://www.w3.org/ns/sosa/"
	NSSSN   = "http://www.w3.org/ns/ssn/"
	NSQB    = "http://purl.org/linked-data/cube#"
	NSFOAF  = "http://xmlns.com/foaf/0.1/"
	NSSAREF = "https://w3id.org/saref#"
	NSEX    = "http://example.org/"
)

// RDF and XSD
const (
	RDFType    = NSRDF + "type"
	RDFValue   = NSRDF + "value"
	XSDString  = NSXSD + "string"
	XSDBoolean = NSXSD + "boolean"
	XSDDecimal = NSXSD + "decimal"
	XSDInteger = NSXSD + "integer"
)

// Linked Data Platform
const (
	LDPBasicContainer          = NSLDP + "BasicContainer"
	LDPIndirectContainer       = NSLDP + "IndirectContainer"
	LDPContains                = NSLDP + "contains"
	LDPHasMemberRelation       = NSLDP + "hasMemberRelation"
	LDPInsertedContentRelation = NSLDP + "insertedContentRelation"
)

// SOSA / SSN sensor vocabulary
const (
	SOSAPlatform         = NSSOSA + "Platform"
	SOSASensor           = NSSOSA + "Sensor"
	SOSAHosts            = NSSOSA + "hosts"
	SSNSensorOutput      = NSSSN + "SensorOutput"
	SSNIsValueOf         = NSSSN + "isValueOf"
	SSNIsProducedBy      = NSSSN + "isProducedBy"
	QBObservation        = NSQB + "Observation"
	FOAFPrimaryTopic     = NSFOAF + "primaryTopic"
	FOAFIsPrimaryTopicOf = NSFOAF + "isPrimaryTopicOf"
)

// SAREF actuator vocabulary
const (
	SAREFLightingDevice = NSSAREF + "LightingDevice"
	SAREFHasState       = NSSAREF + "hasState"
	SAREFOn             = NSSAREF + "On"
	SAREFOff            = NSSAREF + "Off"
)

// Gateway-local predicates
const (
	EXHasLightValue  = NSEX + "hasLightValue"
	EXHasSoundValue  = NSEX + "hasSoundValue"
	EXHasSensorValue = NSEX + "hasSensorValue"
)

// Prefixes lists the namespace bindings the encoders may use to compact IRIs.
var Prefixes = []Prefix{
	{"rdf", NSRDF},
	{"xsd", NSXSD},
	{"ldp", NSLDP},
	{"sosa", NSSOSA},
	{"ssn", NSSSN},
	{"qb", NSQB},
	{"foaf", NSFOAF},
	{"saref", NSSAREF},
	{"ex", NSEX},
}

// Prefix binds a short name to a namespace IRI.
type Prefix struct {
	Name string
	IRI  string
}
