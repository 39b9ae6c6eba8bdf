// Package docrag turns documentation websites and uploaded files into
// queryable retrieval corpora and answers questions against them using
// retrieved context and a generative model.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, minio/).
package docrag
