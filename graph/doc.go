// Package graph checks a Neo4j database for Person nodes by name.
package graph
