// Package services implements the core ingestion pipeline and retrieval
// engine behind the driving ports. Services depend only on the driven
// port contracts and are wired with concrete adapters at startup.
package services
