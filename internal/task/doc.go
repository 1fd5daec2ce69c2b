// Package task manages background analysis queuing, processing, and lifecycle.
// Submissions are recorded in the analysis store and handed to a bounded queue
// so that HTTP request handling never waits on log parsing or LLM calls. A
// fixed pool of workers drains the queue and drives each task through its
// status lifecycle.
package task
