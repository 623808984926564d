// package models defines the data model for the nYtevibe client.
//
// Credential and UserRecord make up the persisted session state; Venue and
// CrowdReport mirror the venue records served by the remote API.
package models
