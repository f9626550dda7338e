// Package recognition talks to the remote vision model that reads VINs and
// location codes from still images.
//
// Requests use the generateContent wire format (a text instruction plus one
// inline base64 image) and responses are free text from which the first
// well-formed JSON object, or for locations a bare code token, is extracted.
// Failures to reach or understand the service surface as *TransportError
// (matching services.ErrTransport); a service that answered but saw no VIN
// yields ErrNoVIN, and a location reply of UNKNOWN is a normal absent result.
// The client never retries on its own: the operator re-captures instead.
package recognition
