// Package server exposes a hosted workbench over HTTP.
//
// Routes:
//
//	GET    /api/state            current snapshot
//	POST   /api/documents        open {"path": ...}
//	POST   /api/documents/new    open a new-document form
//	POST   /api/forms/{key}      edit and optionally submit a form
//	DELETE /api/documents/{key}  close a document, keeping its tabs
//	POST   /api/tabs/home        show the home tab
//	DELETE /api/tabs/{key}       close a tab
//	DELETE /api/tabs             close every tab
//	PUT    /api/active           select {"tab": ...}; 0 clears
//	GET    /ws                   snapshot stream
//	GET    /metrics              Prometheus metrics
//	GET    /healthz              liveness
//
// Errors are JSON objects carrying a tabdeck error code.
package server
