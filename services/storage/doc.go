/*
The storage package provides the counter table used by the visitor counter.

A record is addressed by a fixed ID and carries a single integer count.
The only mutation is Increment, which every backend performs atomically:
DynamoDB through a conditional update expression, BoltDB inside one write
transaction and MemStore under its mutex. Callers must never implement an
increment as a Get followed by a Put.

A DynamoDB backed implementation is used in production.
The BoltDB implementation backs the local counterd daemon.
*/
package storage
