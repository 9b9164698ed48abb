// Package timing reconstructs per-speaker timelines from RTP timestamps
// and receive times.
//
// Voice clients stop sending packets while a speaker is silent (DTX) and
// packets go missing in transit, so the codec timestamps of consecutive
// frames are not contiguous. Each speaker's track is written without a
// mixer, so every gap must be padded with silence to keep all tracks on
// the same session-relative timeline.
//
// The Reconciler compares the codec clock delta against the wall clock
// delta of each pair of consecutive frames from one speaker:
//
//	deviation = |100 - dCodec*100/dWall|
//
// When the clocks disagree by more than DeviationThreshold percent the
// wall clock is trusted, otherwise the codec clock is.
//
// A speaker first heard after the session started gets a Deferred
// decision. That leading silence is not written; it is recorded on the
// track and applied when the track is exported.
//
// Example:
//
//	r := timing.NewReconciler(timing.DefaultConfig())
//	d := r.Reconcile(userID, frame.Timestamp, frame.ReceivedAt)
//	switch d.Kind {
//	case timing.Immediate:
//	    st.Write(userID, d.Frames, pcm)
//	case timing.Deferred:
//	    st.SetLeadingSilence(userID, d.Frames)
//	    st.Write(userID, 0, pcm)
//	case timing.None:
//	    st.Write(userID, 0, pcm)
//	}
//
// A Reconciler is not safe for concurrent use; the decode worker owns it.
package timing
